package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

func TestCreateCommitStatus(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]string
	)
	router := chi.NewRouter()
	router.Post("/repos/{owner}/{repo}/statuses/{sha}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"state":"failure"}`))
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client, err := NewClient("ghp_test", server.URL, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = client.CreateCommitStatus(context.Background(), "acme", "billing", "abc123", CommitStatus{
		State:       StateFailure,
		Description: strings.Repeat("x", 200),
		TargetURL:   "https://scan.example.com/dashboard?id=acme",
		Context:     "codescan/quality-gate",
	})
	require.NoError(t, err)

	assert.Equal(t, "/repos/acme/billing/statuses/abc123", gotPath)
	assert.Equal(t, "Bearer ghp_test", gotAuth)
	assert.Equal(t, "failure", gotBody["state"])
	assert.Equal(t, "codescan/quality-gate", gotBody["context"])
	assert.Equal(t, "https://scan.example.com/dashboard?id=acme", gotBody["target_url"])
	assert.Len(t, gotBody["description"], maxDescriptionLen)
}

func TestCreateCommitStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"No commit found for SHA: nope"}`))
	}))
	defer server.Close()

	client, err := NewClient("ghp_test", server.URL, zaptest.NewLogger(t))
	require.NoError(t, err)

	err = client.CreateCommitStatus(context.Background(), "acme", "billing", "nope", CommitStatus{State: StateSuccess})
	assert.ErrorContains(t, err, "failed to create commit status")
}

func TestHeadSHA(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sfdx-project.json"), []byte("{}"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("sfdx-project.json")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	scanDir := filepath.Join(dir, ".scannerwork")
	require.NoError(t, os.MkdirAll(scanDir, 0o755))

	got, err := HeadSHA(scanDir)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), got)
}

func TestHeadSHANotARepository(t *testing.T) {
	_, err := HeadSHA(t.TempDir())
	assert.Error(t, err)
}

func TestStatusState(t *testing.T) {
	assert.Equal(t, StateSuccess, StatusState(types.GateOK))
	assert.Equal(t, StateSuccess, StatusState(types.GateWarn))
	assert.Equal(t, StateFailure, StatusState(types.GateError))
	assert.Equal(t, StateError, StatusState(types.GateNone))
	assert.Equal(t, StateError, StatusState(""))
}

func TestStatusDescription(t *testing.T) {
	verdict := &types.Verdict{Status: &types.ProjectStatus{
		Status: types.GateError,
		Conditions: []types.Condition{
			{Status: "ERROR", MetricKey: "coverage"},
			{Status: "OK", MetricKey: "bugs"},
			{Status: "ERROR", MetricKey: "duplicated_lines_density"},
		},
	}}
	assert.Equal(t, "Quality gate ERROR: failed coverage, duplicated_lines_density", StatusDescription(verdict))

	passing := &types.Verdict{Status: &types.ProjectStatus{Status: types.GateOK}}
	assert.Equal(t, "Quality gate OK", StatusDescription(passing))
}

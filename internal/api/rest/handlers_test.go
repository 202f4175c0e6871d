package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

type fakeChecks struct {
	started   []types.CheckRequest
	startErr  error
	verdict   *types.Verdict
	resultErr error
	cancelled []string
}

func (f *fakeChecks) StartCheck(_ context.Context, req types.CheckRequest) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, req)
	return "quality-gate-1", nil
}

func (f *fakeChecks) CheckResult(_ context.Context, _ string) (*types.Verdict, error) {
	return f.verdict, f.resultErr
}

func (f *fakeChecks) CancelCheck(_ context.Context, checkID string) error {
	f.cancelled = append(f.cancelled, checkID)
	return nil
}

func newRouter(t *testing.T, checks Checks) http.Handler {
	r := chi.NewRouter()
	NewHandler(checks, zaptest.NewLogger(t)).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStartCheck(t *testing.T) {
	checks := &fakeChecks{}
	rec := do(t, newRouter(t, checks), http.MethodPost, "/checks",
		`{"working_dir":"/scan","timeout":"90s","poll_interval":"1s","publish":true}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp StartCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "quality-gate-1", resp.CheckID)
	assert.Equal(t, "started", resp.Status)

	require.Len(t, checks.started, 1)
	assert.Equal(t, types.CheckRequest{
		WorkingDir:   "/scan",
		Timeout:      90 * time.Second,
		PollInterval: time.Second,
		Publish:      true,
	}, checks.started[0])
}

func TestStartCheckBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing working dir", `{}`},
		{"bad timeout", `{"working_dir":"/scan","timeout":"soon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := &fakeChecks{}
			rec := do(t, newRouter(t, checks), http.MethodPost, "/checks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, checks.started)
		})
	}
}

func TestStartCheckBackendError(t *testing.T) {
	checks := &fakeChecks{startErr: errors.New("temporal unavailable")}
	rec := do(t, newRouter(t, checks), http.MethodPost, "/checks", `{"working_dir":"/scan"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetCheckResult(t *testing.T) {
	var status types.ProjectStatus
	require.NoError(t, json.Unmarshal([]byte(`{"status":"OK","conditions":[]}`), &status))

	checks := &fakeChecks{verdict: &types.Verdict{
		ProjectKey: "acme",
		AnalysisID: "A1",
		Status:     &status,
	}}
	rec := do(t, newRouter(t, checks), http.MethodGet, "/checks/quality-gate-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, "acme", resp["project_key"])
	assert.Equal(t, map[string]any{"status": "OK", "conditions": []any{}}, resp["project_status"])
}

func TestGetCheckResultFailed(t *testing.T) {
	checks := &fakeChecks{resultErr: errors.New("quality gate timeout")}
	rec := do(t, newRouter(t, checks), http.MethodGet, "/checks/quality-gate-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CheckResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "quality gate timeout", resp.ErrorMessage)
	assert.Nil(t, resp.ProjectStatus)
}

func TestCancelCheck(t *testing.T) {
	checks := &fakeChecks{}
	rec := do(t, newRouter(t, checks), http.MethodDelete, "/checks/quality-gate-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"quality-gate-1"}, checks.cancelled)
}

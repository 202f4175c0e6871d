package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

type stubChecks struct{}

func (stubChecks) StartCheck(context.Context, types.CheckRequest) (string, error) {
	return "quality-gate-1", nil
}

func (stubChecks) CheckResult(context.Context, string) (*types.Verdict, error) {
	return &types.Verdict{Status: &types.ProjectStatus{Status: types.GateOK}}, nil
}

func (stubChecks) CancelCheck(context.Context, string) error { return nil }

func TestRouter(t *testing.T) {
	router := newRouter(stubChecks{}, zaptest.NewLogger(t))

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/api/v1/checks", `{"working_dir":"/scan"}`, http.StatusAccepted},
		{http.MethodGet, "/api/v1/checks/quality-gate-1", "", http.StatusOK},
		{http.MethodDelete, "/api/v1/checks/quality-gate-1", "", http.StatusOK},
		{http.MethodPost, "/checks", `{"working_dir":"/scan"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	require.NotEmpty(t, out.String())
	assert.True(t, strings.HasPrefix(out.String(), "qualitygate "))
}

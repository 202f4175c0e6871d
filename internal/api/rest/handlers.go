package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// Checks starts and inspects remotely executed quality gate checks
type Checks interface {
	StartCheck(ctx context.Context, req types.CheckRequest) (string, error)
	CheckResult(ctx context.Context, checkID string) (*types.Verdict, error)
	CancelCheck(ctx context.Context, checkID string) error
}

// Handler handles REST API requests
type Handler struct {
	checks Checks
	logger *zap.Logger
}

// NewHandler creates a new REST handler
func NewHandler(checks Checks, logger *zap.Logger) *Handler {
	return &Handler{
		checks: checks,
		logger: logger,
	}
}

// StartCheckRequest represents a request to start a check
type StartCheckRequest struct {
	WorkingDir     string `json:"working_dir"`
	ServerOverride string `json:"server_override,omitempty"`
	Timeout        string `json:"timeout,omitempty"`
	PollInterval   string `json:"poll_interval,omitempty"`
	Publish        bool   `json:"publish,omitempty"`
}

// StartCheckResponse represents the response from starting a check
type StartCheckResponse struct {
	CheckID string `json:"check_id"`
	Status  string `json:"status"`
}

// CheckResultResponse represents the outcome of a check
type CheckResultResponse struct {
	CheckID       string               `json:"check_id"`
	Status        string               `json:"status"`
	ProjectKey    string               `json:"project_key,omitempty"`
	AnalysisID    string               `json:"analysis_id,omitempty"`
	ProjectStatus *types.ProjectStatus `json:"project_status,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
}

// StartCheck handles POST /checks
func (h *Handler) StartCheck(w http.ResponseWriter, r *http.Request) {
	var req StartCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	checkReq, err := req.toCheckRequest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	checkID, err := h.checks.StartCheck(r.Context(), checkReq)
	if err != nil {
		h.logger.Error("failed to start check", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, StartCheckResponse{
		CheckID: checkID,
		Status:  "started",
	})
}

// GetCheckResult handles GET /checks/{id}. It blocks until the check finishes or the
// client goes away.
func (h *Handler) GetCheckResult(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "id")

	verdict, err := h.checks.CheckResult(r.Context(), checkID)
	if err != nil {
		writeJSON(w, http.StatusOK, CheckResultResponse{
			CheckID:      checkID,
			Status:       "failed",
			ErrorMessage: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, CheckResultResponse{
		CheckID:       checkID,
		Status:        "completed",
		ProjectKey:    verdict.ProjectKey,
		AnalysisID:    verdict.AnalysisID,
		ProjectStatus: verdict.Status,
	})
}

// CancelCheck handles DELETE /checks/{id}
func (h *Handler) CancelCheck(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "id")

	if err := h.checks.CancelCheck(r.Context(), checkID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checks", h.StartCheck)
	r.Get("/checks/{id}", h.GetCheckResult)
	r.Delete("/checks/{id}", h.CancelCheck)
}

func (req StartCheckRequest) toCheckRequest() (types.CheckRequest, error) {
	out := types.CheckRequest{
		WorkingDir:     req.WorkingDir,
		ServerOverride: req.ServerOverride,
		Publish:        req.Publish,
	}
	if out.WorkingDir == "" {
		return out, errMissingWorkingDir
	}

	var err error
	if out.Timeout, err = parseDuration(req.Timeout); err != nil {
		return out, err
	}
	if out.PollInterval, err = parseDuration(req.PollInterval); err != nil {
		return out, err
	}
	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

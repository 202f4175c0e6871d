package activities

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/publish"
	"github.com/VillageChief/codescan-sfdx/internal/qualitygate"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// Error types reported to the workflow
const (
	ErrTypeTaskURLNotFound        = "TaskUrlNotFound"
	ErrTypeQualityGateURLNotFound = "QualityGateUrlNotFound"
	ErrTypeTimeout                = "Timeout"
	ErrTypeServerReported         = "ServerReportedError"
	ErrTypeTransport              = "TransportError"
	ErrTypeInvalidURL             = "InvalidUrl"
	ErrTypeReportFileUnreadable   = "ReportFileUnreadable"
)

// PublisherFactory builds a publisher for a scanner working directory
type PublisherFactory func(workingDir string) (*publish.Publisher, error)

// Defaults fill in request fields left empty
type Defaults struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// Activities runs quality gate checks on a worker
type Activities struct {
	checker   *qualitygate.Checker
	token     string
	defaults  Defaults
	publisher PublisherFactory
	logger    *zap.Logger
	heartbeat func(ctx context.Context, details ...interface{})
}

// NewActivities creates a new activities handler. token authenticates every check.
func NewActivities(checker *qualitygate.Checker, token string, defaults Defaults, publisher PublisherFactory, logger *zap.Logger) *Activities {
	return &Activities{
		checker:   checker,
		token:     token,
		defaults:  defaults,
		publisher: publisher,
		logger:    logger,
		heartbeat: activity.RecordHeartbeat,
	}
}

// CheckQualityGate waits for the analysis in req.WorkingDir and returns its verdict.
// Every task snapshot is recorded as a heartbeat so cancellation reaches the poll loop.
// Failures are non-retryable.
func (a *Activities) CheckQualityGate(ctx context.Context, req types.CheckRequest) (*types.Verdict, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("checking quality gate",
		"working_dir", req.WorkingDir,
		"server_override", req.ServerOverride,
	)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.defaults.Timeout
	}
	interval := req.PollInterval
	if interval <= 0 {
		interval = a.defaults.PollInterval
	}

	verdict, err := a.checker.CheckVerdict(ctx, qualitygate.Options{
		AuthToken:      a.token,
		Deadline:       time.Now().Add(timeout),
		WorkingDir:     req.WorkingDir,
		PollInterval:   interval,
		ServerOverride: req.ServerOverride,
		OnSnapshot: func(task *types.AnalysisTask) {
			a.heartbeat(ctx, string(task.Status))
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrorType(err), err)
	}

	return verdict, nil
}

// PublishVerdict sends verdict to the targets configured for the worker
func (a *Activities) PublishVerdict(ctx context.Context, req types.CheckRequest, verdict *types.Verdict) (PublishResult, error) {
	if a.publisher == nil {
		return PublishResult{Success: false, Message: "publishing not configured"}, nil
	}

	p, err := a.publisher(req.WorkingDir)
	if err != nil {
		return PublishResult{Success: false, Message: err.Error()}, err
	}

	if err := p.Publish(ctx, verdict); err != nil {
		a.logger.Warn("verdict published with errors", zap.Error(err))
		return PublishResult{Success: false, Targets: p.Len(), Message: err.Error()}, nil
	}

	return PublishResult{
		Success: true,
		Targets: p.Len(),
		Message: "verdict published",
	}, nil
}

// ErrorType names the failure category of a check error
func ErrorType(err error) string {
	var (
		serverErr    *qualitygate.ServerError
		transportErr *qualitygate.TransportError
	)
	switch {
	case errors.Is(err, qualitygate.ErrTaskURLNotFound):
		return ErrTypeTaskURLNotFound
	case errors.Is(err, qualitygate.ErrQualityGateURLNotFound):
		return ErrTypeQualityGateURLNotFound
	case errors.Is(err, qualitygate.ErrTimeout):
		return ErrTypeTimeout
	case errors.Is(err, qualitygate.ErrInvalidURL):
		return ErrTypeInvalidURL
	case errors.Is(err, qualitygate.ErrReportFileUnreadable):
		return ErrTypeReportFileUnreadable
	case errors.As(err, &serverErr):
		return ErrTypeServerReported
	case errors.As(err, &transportErr):
		return ErrTypeTransport
	default:
		return ""
	}
}

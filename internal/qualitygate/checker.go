// Package qualitygate waits for a submitted analysis to finish and fetches its quality
// gate status.
package qualitygate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/analysis"
	"github.com/VillageChief/codescan-sfdx/internal/endpoint"
	"github.com/VillageChief/codescan-sfdx/internal/poll"
	"github.com/VillageChief/codescan-sfdx/internal/reportfile"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// State is a step of a quality gate check
type State string

const (
	StateResolvingTaskURL State = "RESOLVING_TASK_URL"
	StatePollingTask      State = "POLLING_TASK"
	StateTimedOut         State = "TIMED_OUT"
	StateTaskTerminal     State = "TASK_TERMINAL"
	StateResolvingQGURL   State = "RESOLVING_QG_URL"
	StateFetchingQG       State = "FETCHING_QG"
	StateDone             State = "DONE"
	StateFailed           State = "FAILED"
)

// Options configures a single check
type Options struct {
	AuthToken string
	// Deadline is absolute; polling stops on the first snapshot fetched at or after it.
	Deadline       time.Time
	WorkingDir     string
	PollInterval   time.Duration
	ServerOverride string
	// OnSnapshot, when set, is called with every task snapshot fetched while polling.
	OnSnapshot func(task *types.AnalysisTask)
}

// Checker runs quality gate checks
type Checker struct {
	httpClient *http.Client
	resolver   *endpoint.Resolver
	logger     *zap.Logger
	now        func() time.Time
}

// NewChecker creates a new checker. httpClient may be nil.
func NewChecker(httpClient *http.Client, logger *zap.Logger) *Checker {
	return &Checker{
		httpClient: httpClient,
		resolver:   endpoint.NewResolver(logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Check blocks until the analysis task leaves PENDING/IN_PROGRESS or the deadline
// passes, then returns the quality gate status of the analysis.
func (c *Checker) Check(ctx context.Context, opts Options) (*types.ProjectStatus, error) {
	verdict, err := c.CheckVerdict(ctx, opts)
	if err != nil {
		return nil, err
	}
	return verdict.Status, nil
}

// CheckVerdict is Check, returning the status along with the task and project
// identifiers it belongs to.
func (c *Checker) CheckVerdict(ctx context.Context, opts Options) (*types.Verdict, error) {
	s := &session{
		logger: c.logger.With(
			zap.String("check_id", uuid.NewString()),
			zap.String("working_dir", opts.WorkingDir),
		),
	}

	s.enter(StateResolvingTaskURL)
	taskURL, err := c.resolver.TaskURL(opts.WorkingDir, opts.ServerOverride)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to resolve task url: %w", err))
	}

	client := analysis.NewClient(c.httpClient, opts.AuthToken, s.logger)

	s.enter(StatePollingTask, zap.String("url", taskURL))
	attempts := 0
	task, err := poll.New(func(ctx context.Context) (*types.AnalysisTask, error) {
		attempts++
		return client.GetTask(ctx, taskURL)
	}, opts.PollInterval).Until(ctx, func(task *types.AnalysisTask) (bool, error) {
		if opts.OnSnapshot != nil {
			opts.OnSnapshot(task)
		}
		return !task.Status.InProgress() || !c.now().Before(opts.Deadline), nil
	})
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to poll analysis task: %w", err))
	}

	if task.Status.InProgress() {
		s.enter(StateTimedOut,
			zap.String("task_status", string(task.Status)),
			zap.Int("attempts", attempts),
		)
		return nil, s.fail(ErrTimeout)
	}

	s.enter(StateTaskTerminal,
		zap.String("task_id", task.ID),
		zap.String("task_status", string(task.Status)),
		zap.Int("attempts", attempts),
	)
	if task.Status != types.TaskSuccess {
		s.logger.Warn("analysis task did not succeed",
			zap.String("task_id", task.ID),
			zap.String("task_status", string(task.Status)),
			zap.String("error_message", task.ErrorMessage),
		)
	}

	s.enter(StateResolvingQGURL)
	qgURL, err := c.resolver.QualityGateURL(opts.WorkingDir, task, opts.ServerOverride)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to resolve quality gate url: %w", err))
	}

	s.enter(StateFetchingQG, zap.String("url", qgURL))
	status, err := client.GetProjectStatus(ctx, qgURL)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to fetch quality gate status: %w", err))
	}

	verdict := &types.Verdict{
		TaskID:     task.ID,
		AnalysisID: task.QualityGateAnalysisID(),
		Status:     status,
	}
	if record, err := reportfile.Read(opts.WorkingDir); err == nil {
		verdict.ProjectKey, _ = record.ProjectKey()
		verdict.DashboardURL, _ = record.DashboardURL()
	}

	s.enter(StateDone, zap.String("quality_gate", status.Status))
	return verdict, nil
}

// session tracks the state of one check for logging
type session struct {
	logger *zap.Logger
	state  State
}

func (s *session) enter(state State, fields ...zap.Field) {
	s.state = state
	s.logger.Debug("quality gate check state",
		append([]zap.Field{zap.String("state", string(state))}, fields...)...,
	)
}

func (s *session) fail(err error) error {
	s.logger.Error("quality gate check failed",
		zap.String("state", string(s.state)),
		zap.Error(err),
	)
	s.state = StateFailed
	return err
}

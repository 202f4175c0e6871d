package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/VillageChief/codescan-sfdx/internal/activities"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// DefaultCheckTimeout bounds the check activity when the request has no timeout
const DefaultCheckTimeout = 10 * time.Minute

// MinHeartbeatTimeout is the shortest heartbeat timeout given to the check activity.
// Requests polling more slowly get three poll intervals.
const MinHeartbeatTimeout = time.Minute

// QualityGateWorkflow checks the quality gate for one analysis and optionally
// publishes the verdict
func QualityGateWorkflow(ctx workflow.Context, input WorkflowInput) (*types.Verdict, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting quality gate workflow",
		"working_dir", input.Request.WorkingDir,
		"publish", input.Request.Publish,
	)

	timeout := input.Request.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: timeout + time.Minute,
		HeartbeatTimeout:    heartbeatTimeout(input.Request.PollInterval),
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *activities.Activities

	// Step 1: Wait for the analysis and fetch the quality gate
	var verdict types.Verdict
	err := workflow.ExecuteActivity(ctx, a.CheckQualityGate, input.Request).Get(ctx, &verdict)
	if err != nil {
		logger.Error("quality gate check failed", "error", err)
		return nil, err
	}

	// Step 2: Publish the verdict
	if input.Request.Publish {
		var publishResult activities.PublishResult
		err = workflow.ExecuteActivity(ctx, a.PublishVerdict, input.Request, &verdict).Get(ctx, &publishResult)
		if err != nil {
			logger.Warn("failed to publish verdict", "error", err)
			// Non-fatal - the verdict is still returned
		}
	}

	logger.Info("quality gate workflow completed",
		"quality_gate", verdict.Status.Status,
	)

	return &verdict, nil
}

// heartbeatTimeout leaves room for a few missed snapshots before the server treats the
// check activity as lost.
func heartbeatTimeout(pollInterval time.Duration) time.Duration {
	return max(MinHeartbeatTimeout, 3*pollInterval)
}

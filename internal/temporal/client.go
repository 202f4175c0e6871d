package temporal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/VillageChief/codescan-sfdx/internal/temporal/workflows"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

// Client wraps Temporal client functionality
type Client struct {
	temporalClient client.Client
	logger         *zap.Logger
	taskQueue      string
}

// NewClient creates a new Temporal client
func NewClient(address, namespace, taskQueue string, logger *zap.Logger) (*Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}

	return newClient(c, taskQueue, logger), nil
}

func newClient(c client.Client, taskQueue string, logger *zap.Logger) *Client {
	return &Client{
		temporalClient: c,
		logger:         logger,
		taskQueue:      taskQueue,
	}
}

// StartCheck starts a quality gate workflow and returns its id
func (c *Client) StartCheck(ctx context.Context, req types.CheckRequest) (string, error) {
	workflowOptions := client.StartWorkflowOptions{
		ID:        "quality-gate-" + uuid.NewString(),
		TaskQueue: c.taskQueue,
	}

	we, err := c.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.QualityGateWorkflow, workflows.WorkflowInput{
		Request: req,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start workflow: %w", err)
	}

	c.logger.Info("started workflow",
		zap.String("workflow_id", we.GetID()),
		zap.String("run_id", we.GetRunID()),
		zap.String("working_dir", req.WorkingDir),
	)

	return we.GetID(), nil
}

// CheckResult waits for the workflow to finish and returns its verdict
func (c *Client) CheckResult(ctx context.Context, workflowID string) (*types.Verdict, error) {
	run := c.temporalClient.GetWorkflow(ctx, workflowID, "")

	var verdict types.Verdict
	if err := run.Get(ctx, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

// CancelCheck cancels a running workflow
func (c *Client) CancelCheck(ctx context.Context, workflowID string) error {
	return c.temporalClient.CancelWorkflow(ctx, workflowID, "")
}

// Ping reports whether the Temporal frontend is reachable
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.temporalClient.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health check failed: %w", err)
	}
	return nil
}

// Close closes the Temporal client
func (c *Client) Close() {
	c.temporalClient.Close()
}

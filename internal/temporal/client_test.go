package temporal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/VillageChief/codescan-sfdx/internal/temporal/workflows"
	"github.com/VillageChief/codescan-sfdx/pkg/types"
)

func TestStartCheck(t *testing.T) {
	tc := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("quality-gate-1")
	run.On("GetRunID").Return("run-1")

	req := types.CheckRequest{WorkingDir: "/scan", Publish: true}
	tc.On("ExecuteWorkflow", mock.Anything,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.TaskQueue == "quality-gate-queue" && strings.HasPrefix(o.ID, "quality-gate-")
		}),
		mock.Anything,
		workflows.WorkflowInput{Request: req},
	).Return(run, nil)

	c := newClient(tc, "quality-gate-queue", zaptest.NewLogger(t))
	id, err := c.StartCheck(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "quality-gate-1", id)
	tc.AssertExpectations(t)
}

func TestStartCheckError(t *testing.T) {
	tc := &mocks.Client{}
	tc.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("unavailable"))

	c := newClient(tc, "q", zaptest.NewLogger(t))
	_, err := c.StartCheck(context.Background(), types.CheckRequest{})
	assert.ErrorContains(t, err, "failed to start workflow")
}

func TestCheckResult(t *testing.T) {
	tc := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		v := args.Get(1).(*types.Verdict)
		v.ProjectKey = "acme"
		v.Status = &types.ProjectStatus{Status: types.GateOK}
	}).Return(nil)
	tc.On("GetWorkflow", mock.Anything, "quality-gate-1", "").Return(run)

	c := newClient(tc, "q", zaptest.NewLogger(t))
	verdict, err := c.CheckResult(context.Background(), "quality-gate-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", verdict.ProjectKey)
	assert.Equal(t, types.GateOK, verdict.Status.Status)
}

func TestPing(t *testing.T) {
	tc := &mocks.Client{}
	tc.On("CheckHealth", mock.Anything, mock.Anything).
		Return(&client.CheckHealthResponse{}, nil).Once()
	tc.On("CheckHealth", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	c := newClient(tc, "q", zaptest.NewLogger(t))
	require.NoError(t, c.Ping(context.Background()))
	assert.ErrorContains(t, c.Ping(context.Background()), "connection refused")
}

func TestCancelCheck(t *testing.T) {
	tc := &mocks.Client{}
	tc.On("CancelWorkflow", mock.Anything, "quality-gate-1", "").Return(nil)

	c := newClient(tc, "q", zaptest.NewLogger(t))
	require.NoError(t, c.CancelCheck(context.Background(), "quality-gate-1"))
	tc.AssertExpectations(t)
}

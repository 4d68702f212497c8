package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	executionmem "github.com/viant/conduit/service/dao/execution/memory"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/conduit/service/messaging/memory"
	"github.com/viant/conduit/service/processor"
)

var workflowYAML = []byte(`
id: order-flow
name: order-flow
variables:
  region: eu
steps:
  - id: check
    type: condition
    config:
      expression: total > 0
  - id: notify
    type: service_call
    config:
      service: notifications
      method: POST
      path: /notify
`)

type fixture struct {
	service    *Service
	workflows  *workflow.Service
	executions *executionmem.Service
	kickoff    *memory.Queue[processor.Task]
	dispatch   *memory.Queue[model.Message]
	index      *correlation.Index
	registry   *directory.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ret := &fixture{
		workflows:  workflow.New(),
		executions: executionmem.New(),
		kickoff:    memory.NewQueue[processor.Task](memory.DefaultConfig()),
		dispatch:   memory.NewQueue[model.Message](memory.DefaultConfig()),
		index:      correlation.NewIndex(),
		registry:   directory.New(),
	}
	require.NoError(t, ret.registry.Register(&directory.Entry{
		Name:     "notifications",
		Endpoint: "http://notifications.local",
	}))
	service, err := New(
		WithWorkflowDAO(ret.workflows),
		WithExecutionDAO(ret.executions),
		WithKickoffQueue(ret.kickoff),
		WithDispatchQueue(ret.dispatch),
		WithDirectory(ret.registry),
		WithCorrelationIndex(ret.index),
	)
	require.NoError(t, err)
	ret.service = service
	return ret
}

func TestService_CreateWorkflow(t *testing.T) {
	f := newFixture(t)
	definition, err := f.service.CreateWorkflow(context.Background(), workflowYAML)
	require.NoError(t, err)
	assert.Equal(t, "order-flow", definition.Name)
	stored, ok := f.workflows.Get(definition.ID)
	require.True(t, ok)
	assert.Equal(t, definition.Name, stored.Name)
}

func TestService_CreateWorkflow_UnknownService(t *testing.T) {
	f := newFixture(t)
	encoded := []byte(`
name: ghost-flow
steps:
  - id: call
    type: service_call
    config:
      service: ghost
`)
	_, err := f.service.CreateWorkflow(context.Background(), encoded)
	require.Error(t, err)
	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestService_Execute(t *testing.T) {
	f := newFixture(t)
	definition, err := f.service.CreateWorkflow(context.Background(), workflowYAML)
	require.NoError(t, err)

	exec, err := f.service.Execute(context.Background(), definition.ID,
		WithCorrelationID("corr-1"),
		WithInitialContext(map[string]interface{}{"total": 12, "region": "us"}))
	require.NoError(t, err)
	assert.Equal(t, execution.StatusPending, exec.Status)
	assert.Equal(t, "corr-1", exec.CorrelationID)
	// caller-provided context wins over workflow variables
	assert.Equal(t, "us", exec.Context["region"])
	assert.Equal(t, 12, exec.Context["total"])

	stored, err := f.executions.Load(context.Background(), exec.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusPending, stored.Status)

	task, err := f.kickoff.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, exec.ID, task.T().ExecutionID)
	assert.Equal(t, definition.ID, task.T().WorkflowID)
	require.NoError(t, task.Ack())
}

func TestService_Execute_UnknownWorkflow(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Execute(context.Background(), "missing")
	assert.Error(t, err)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	definition, err := f.service.CreateWorkflow(context.Background(), workflowYAML)
	require.NoError(t, err)
	exec, err := f.service.Execute(context.Background(), definition.ID)
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(context.Background(), exec.ID))
	stored, err := f.service.Execution(context.Background(), exec.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusCancelled, stored.Status)

	// cancelling a terminal execution is a no-op
	require.NoError(t, f.service.Cancel(context.Background(), exec.ID))
}

func TestService_DispatchResume(t *testing.T) {
	f := newFixture(t)
	exec := execution.New("exec-1", "order-flow", "corr-9", map[string]interface{}{})
	exec.Start("check")
	require.NoError(t, f.executions.Save(context.Background(), exec))
	f.index.Register("corr-9", "exec-1")

	f.service.Start(context.Background())
	defer f.service.Shutdown()

	require.NoError(t, f.dispatch.Publish(context.Background(), &model.Message{
		ID:            "msg-1",
		CorrelationID: "corr-9",
		Source:        "billing",
		MessageType:   "invoice.settled",
		Payload:       map[string]interface{}{"invoiceId": "inv-7"},
	}))

	assert.Eventually(t, func() bool {
		stored, err := f.executions.Load(context.Background(), "exec-1")
		if err != nil {
			return false
		}
		payload, ok := stored.Context["response_billing"].(map[string]interface{})
		return ok && payload["invoiceId"] == "inv-7"
	}, time.Second, 10*time.Millisecond)
}

func TestService_DispatchResume_LastWriteWins(t *testing.T) {
	f := newFixture(t)
	exec := execution.New("exec-1", "order-flow", "corr-9", map[string]interface{}{})
	exec.Start("check")
	require.NoError(t, f.executions.Save(context.Background(), exec))
	f.index.Register("corr-9", "exec-1")

	// snapshot taken before the fold, as a processor checkpoint would hold
	stale := exec.Clone()

	f.service.Start(context.Background())
	defer f.service.Shutdown()

	require.NoError(t, f.dispatch.Publish(context.Background(), &model.Message{
		ID:            "msg-1",
		CorrelationID: "corr-9",
		Source:        "billing",
		Payload:       map[string]interface{}{"invoiceId": "inv-7"},
	}))
	assert.Eventually(t, func() bool {
		stored, err := f.executions.Load(context.Background(), "exec-1")
		if err != nil {
			return false
		}
		_, ok := stored.Context["response_billing"]
		return ok
	}, time.Second, 10*time.Millisecond)

	// a checkpoint saved after the fold overwrites it: last write wins
	require.NoError(t, f.executions.Save(context.Background(), stale))
	stored, err := f.executions.Load(context.Background(), "exec-1")
	require.NoError(t, err)
	_, ok := stored.Context["response_billing"]
	assert.False(t, ok)
}

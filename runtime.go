package conduit

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/conduit/model"
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/clients"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/route"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/invoker"
	"github.com/viant/conduit/service/messaging"
	"github.com/viant/conduit/service/orchestrator"
	"github.com/viant/conduit/service/processor"
	"github.com/viant/conduit/service/router"
	"github.com/viant/conduit/service/transform"
)

// Runtime is the engine facade: message routing, workflow lifecycle, service
// invocation and the audit stores behind one surface.
type Runtime struct {
	router       *router.Service
	orchestrator *orchestrator.Service
	processor    *processor.Service
	invoker      *invoker.Service
	workflows    *workflow.Service
	routes       *route.Service
	directory    *directory.Service
	clients      *clients.Service
	transforms   *transform.Registry
	correlations *correlation.Index
	events       *event.Service

	executionDAO dao.Service[string, execution.Execution]
	callDAO      dao.Service[string, model.ServiceCall]
	msglogDAO    dao.Service[string, model.MessageLog]
	dispatch     messaging.Queue[model.Message]

	initErr error
}

// Execute options re-exported for facade callers.
var (
	WithCorrelationID  = orchestrator.WithCorrelationID
	WithInitialContext = orchestrator.WithInitialContext
)

// callStatsProvider is satisfied by audit stores that aggregate call metrics.
type callStatsProvider interface {
	Stats(ctx context.Context, parameters ...*dao.Parameter) (*model.CallStats, error)
}

// deadLetterer is satisfied by queues that retain payloads whose consumers
// exhausted redelivery.
type deadLetterer interface {
	DeadLetters() []*model.Message
}

// Start launches the processor workers and the dispatch listener.
func (r *Runtime) Start(ctx context.Context) error {
	if r.initErr != nil {
		return r.initErr
	}
	if err := r.processor.Start(ctx); err != nil {
		return err
	}
	r.orchestrator.Start(ctx)
	return nil
}

// Shutdown stops the processor and the dispatch listener and waits for
// in-flight work to drain.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.initErr != nil {
		return r.initErr
	}
	r.processor.Shutdown()
	r.orchestrator.Shutdown()
	return nil
}

// ---------------------------------------------------------------------------
// Message routing
// ---------------------------------------------------------------------------

// RouteMessage matches the message against active routes and dispatches one
// copy per destination of every matched route.
func (r *Runtime) RouteMessage(ctx context.Context, message *model.Message) (*router.Outcome, error) {
	return r.router.Route(ctx, message)
}

// LoadRoutes reads a YAML document holding routing rules and registers them.
func (r *Runtime) LoadRoutes(ctx context.Context, location string) ([]*model.Route, error) {
	return r.routes.Load(ctx, location)
}

// AddRoute validates and registers a single routing rule.
func (r *Runtime) AddRoute(rule *model.Route) error {
	return r.routes.Add(rule)
}

// RemoveRoute drops a routing rule by id.
func (r *Runtime) RemoveRoute(id string) {
	r.routes.Remove(id)
}

// MessageLogs lists message audit entries matching the given criteria.
func (r *Runtime) MessageLogs(ctx context.Context, parameters ...*dao.Parameter) ([]*model.MessageLog, error) {
	return r.msglogDAO.List(ctx, parameters...)
}

// DeadLetters returns dispatched messages whose consumers exhausted
// redelivery; it errors when the dispatch queue does not retain them.
func (r *Runtime) DeadLetters() ([]*model.Message, error) {
	queue, ok := r.dispatch.(deadLetterer)
	if !ok {
		return nil, fmt.Errorf("dispatch queue does not retain dead letters")
	}
	return queue.DeadLetters(), nil
}

// ---------------------------------------------------------------------------
// Workflow lifecycle
// ---------------------------------------------------------------------------

// CreateWorkflow decodes, validates and registers a YAML workflow definition.
func (r *Runtime) CreateWorkflow(ctx context.Context, data []byte) (*model.Workflow, error) {
	return r.orchestrator.CreateWorkflow(ctx, data)
}

// LoadWorkflow loads a workflow definition from the given location.
func (r *Runtime) LoadWorkflow(ctx context.Context, location string) (*model.Workflow, error) {
	return r.workflows.Load(ctx, location)
}

// Workflow returns a registered definition by id or name.
func (r *Runtime) Workflow(id string) (*model.Workflow, bool) {
	return r.workflows.Get(id)
}

// RefreshWorkflow discards any cached copy of the workflow definition at the
// given location. The next LoadWorkflow call reloads the file via the
// configured meta-service.
func (r *Runtime) RefreshWorkflow(location string) error {
	if r == nil || r.workflows == nil {
		return fmt.Errorf("runtime not fully initialised, workflow dao missing")
	}
	r.workflows.Refresh(location)
	return nil
}

// UpsertDefinition parses the supplied YAML bytes and stores the resulting
// definition under the specified location. When data is nil the call falls
// back to RefreshWorkflow, causing a lazy reload on next use.
func (r *Runtime) UpsertDefinition(location string, data []byte) error {
	if r == nil || r.workflows == nil {
		return fmt.Errorf("runtime not fully initialised, workflow dao missing")
	}
	if data == nil {
		return r.RefreshWorkflow(location)
	}
	wf, err := r.workflows.DecodeYAML(data)
	if err != nil {
		return fmt.Errorf("failed to decode workflow YAML: %w", err)
	}
	if wf.Source == nil {
		wf.Source = &model.Source{URL: location}
	} else {
		wf.Source.URL = location
	}
	r.workflows.Upsert(location, wf)
	return nil
}

// Execute creates a pending execution for the workflow and returns
// immediately; the processor walks the steps asynchronously. Use
// WaitForExecution to block for the terminal record.
func (r *Runtime) Execute(ctx context.Context, workflowID string, options ...orchestrator.ExecuteOption) (*execution.Execution, error) {
	return r.orchestrator.Execute(ctx, workflowID, options...)
}

// CancelExecution marks the execution cancelled; the processor stops at its
// next checkpoint. Cancelling a terminal execution is a no-op.
func (r *Runtime) CancelExecution(ctx context.Context, id string) error {
	return r.orchestrator.Cancel(ctx, id)
}

// Execution returns the stored execution record.
func (r *Runtime) Execution(ctx context.Context, id string) (*execution.Execution, error) {
	return r.executionDAO.Load(ctx, id)
}

// Executions lists execution records matching the given criteria.
func (r *Runtime) Executions(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Execution, error) {
	return r.executionDAO.List(ctx, parameters...)
}

// WaitForExecution polls the execution store until the record reaches a
// terminal status or the timeout elapses.
func (r *Runtime) WaitForExecution(ctx context.Context, id string, timeout time.Duration) (*execution.Execution, error) {
	deadline := time.Now().Add(timeout)
	for {
		exec, err := r.executionDAO.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if exec.IsTerminal() {
			return exec, nil
		}
		if time.Now().After(deadline) {
			return exec, fmt.Errorf("timeout waiting for execution %q", id)
		}
		select {
		case <-ctx.Done():
			return exec, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// ---------------------------------------------------------------------------
// Service invocation
// ---------------------------------------------------------------------------

// CallService invokes an external service directly, outside any workflow.
func (r *Runtime) CallService(ctx context.Context, request *invoker.Request) (*model.ServiceCall, error) {
	return r.invoker.Call(ctx, request)
}

// ServiceCall returns one call audit record.
func (r *Runtime) ServiceCall(ctx context.Context, id string) (*model.ServiceCall, error) {
	return r.callDAO.Load(ctx, id)
}

// ServiceCalls lists call audit records matching the given criteria.
func (r *Runtime) ServiceCalls(ctx context.Context, parameters ...*dao.Parameter) ([]*model.ServiceCall, error) {
	return r.callDAO.List(ctx, parameters...)
}

// CallStats aggregates success rate and latency over matching call records;
// it errors when the configured audit store does not aggregate.
func (r *Runtime) CallStats(ctx context.Context, parameters ...*dao.Parameter) (*model.CallStats, error) {
	provider, ok := r.callDAO.(callStatsProvider)
	if !ok {
		return nil, fmt.Errorf("call store does not provide stats")
	}
	return provider.Stats(ctx, parameters...)
}

// ---------------------------------------------------------------------------
// Registries
// ---------------------------------------------------------------------------

// RegisterService adds or updates a service directory entry.
func (r *Runtime) RegisterService(entry *directory.Entry) error {
	return r.directory.Register(entry)
}

// Directory returns the service directory.
func (r *Runtime) Directory() *directory.Service {
	return r.directory
}

// RegisterClient adds or updates a client profile.
func (r *Runtime) RegisterClient(client *clients.Client) error {
	return r.clients.Register(client)
}

// RegisterTransform adds a named message transform available to routes.
func (r *Runtime) RegisterTransform(t transform.Transform) {
	r.transforms.Register(t)
}

// Events returns the event service for attaching listeners.
func (r *Runtime) Events() *event.Service {
	return r.events
}

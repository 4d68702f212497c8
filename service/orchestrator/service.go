// Package orchestrator is the control surface of the workflow engine: it
// registers definitions, kicks executions off, cancels them and folds
// correlated dispatch messages back into running execution contexts.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/viant/conduit/internal/idgen"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/messaging"
	"github.com/viant/conduit/service/processor"
	"github.com/viant/conduit/tracing"
)

// ExecuteOption customises a single execution kickoff.
type ExecuteOption func(*executeOptions)

type executeOptions struct {
	correlationID  string
	initialContext map[string]interface{}
}

// WithCorrelationID ties the execution to a message correlation id so that
// correlated responses arriving on the dispatch queue are folded into its
// context.
func WithCorrelationID(correlationID string) ExecuteOption {
	return func(o *executeOptions) {
		o.correlationID = correlationID
	}
}

// WithInitialContext seeds the execution context; caller values win over
// workflow variables.
func WithInitialContext(initialContext map[string]interface{}) ExecuteOption {
	return func(o *executeOptions) {
		o.initialContext = initialContext
	}
}

// Service coordinates workflow definitions and execution lifecycle.
type Service struct {
	workflows    *workflow.Service
	executionDAO dao.Service[string, execution.Execution]
	kickoff      messaging.Queue[processor.Task]
	dispatch     messaging.Queue[model.Message]
	directory    *directory.Service
	correlations *correlation.Index
	events       *event.Service

	cancelFn   context.CancelFunc
	listenerWg sync.WaitGroup
	startOnce  sync.Once
}

// New creates an orchestrator.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if ret.workflows == nil {
		return nil, fmt.Errorf("workflow dao was empty")
	}
	if ret.executionDAO == nil {
		return nil, fmt.Errorf("execution dao was empty")
	}
	if ret.kickoff == nil {
		return nil, fmt.Errorf("kickoff queue was empty")
	}
	if ret.correlations == nil {
		ret.correlations = correlation.NewIndex()
	}
	return ret, nil
}

// CreateWorkflow decodes, validates and registers a YAML definition. On top
// of the structural checks every service_call step must reference a service
// known to the directory.
func (s *Service) CreateWorkflow(ctx context.Context, encoded []byte) (*model.Workflow, error) {
	definition, err := s.workflows.DecodeYAML(encoded)
	if err != nil {
		return nil, err
	}
	if issues := s.checkServices(definition.Steps); len(issues) > 0 {
		return nil, model.NewValidationError(definition.Name, issues...)
	}
	s.workflows.Upsert(definition.ID, definition)
	return definition, nil
}

// checkServices verifies every service_call step (including parallel
// branches) targets a registered service.
func (s *Service) checkServices(steps []*model.Step) []error {
	if s.directory == nil {
		return nil
	}
	var issues []error
	for _, step := range steps {
		switch step.Type {
		case model.StepTypeServiceCall:
			if name := calledService(step.Config); name != "" && !s.directory.Has(name) {
				issues = append(issues, fmt.Errorf("step %s: service %q is not registered", step.ID, name))
			}
		case model.StepTypeParallel:
			branches, _ := step.Config["branches"].([]interface{})
			for _, raw := range branches {
				branch, _ := raw.(map[string]interface{})
				if branch == nil || branch["type"] != string(model.StepTypeServiceCall) {
					continue
				}
				config, _ := branch["config"].(map[string]interface{})
				if name := calledService(config); name != "" && !s.directory.Has(name) {
					issues = append(issues, fmt.Errorf("step %s: service %q is not registered", step.ID, name))
				}
			}
		}
	}
	return issues
}

// calledService extracts the target service name; serviceName is an accepted
// alias of service.
func calledService(config map[string]interface{}) string {
	if name, _ := config["service"].(string); name != "" {
		return name
	}
	name, _ := config["serviceName"].(string)
	return name
}

// Execute creates a pending execution record, persists it and publishes a
// kickoff task. It returns immediately with the pending record; the processor
// walks the workflow asynchronously.
func (s *Service) Execute(ctx context.Context, workflowID string, options ...ExecuteOption) (*execution.Execution, error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.Execute", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	definition, ok := s.workflows.Get(workflowID)
	if !ok {
		err = fmt.Errorf("workflow %s is not registered", workflowID)
		return nil, err
	}
	opts := &executeOptions{}
	for _, option := range options {
		option(opts)
	}
	seed := make(map[string]interface{}, len(definition.Variables)+len(opts.initialContext))
	for k, v := range definition.Variables {
		seed[k] = v
	}
	for k, v := range opts.initialContext {
		seed[k] = v
	}
	exec := execution.New(idgen.New(), definition.ID, opts.correlationID, seed)
	span.WithAttributes(map[string]string{"execution.id": exec.ID, "workflow.id": definition.ID})
	if err = s.executionDAO.Save(ctx, exec); err != nil {
		return nil, err
	}
	if err = s.kickoff.Publish(ctx, &processor.Task{ExecutionID: exec.ID, WorkflowID: definition.ID}); err != nil {
		return nil, err
	}
	s.publishExecution(ctx, event.TypeExecutionStarted, exec)
	return exec.Clone(), nil
}

// Cancel marks the execution cancelled. Cancelling a terminal execution is a
// no-op; the processor adopts the stored cancellation at its next checkpoint.
func (s *Service) Cancel(ctx context.Context, executionID string) error {
	exec, err := s.executionDAO.Load(ctx, executionID)
	if err != nil {
		return err
	}
	if !exec.Cancel() {
		return nil
	}
	if err = s.executionDAO.Save(ctx, exec); err != nil {
		return err
	}
	s.publishExecution(ctx, event.TypeExecutionCancelled, exec)
	return nil
}

// Execution returns the stored execution record.
func (s *Service) Execution(ctx context.Context, executionID string) (*execution.Execution, error) {
	return s.executionDAO.Load(ctx, executionID)
}

// Start launches the dispatch listener when a dispatch queue is configured.
func (s *Service) Start(ctx context.Context) {
	if s.dispatch == nil {
		return
	}
	s.startOnce.Do(func() {
		ctx, s.cancelFn = context.WithCancel(ctx)
		s.listenerWg.Add(1)
		go s.listen(ctx)
	})
}

// Shutdown stops the dispatch listener and waits for it to drain.
func (s *Service) Shutdown() {
	if s.cancelFn != nil {
		s.cancelFn()
	}
	s.listenerWg.Wait()
}

// listen consumes dispatched messages and folds correlated payloads into the
// contexts of running executions registered under the same correlation id.
func (s *Service) listen(ctx context.Context) {
	defer s.listenerWg.Done()
	for {
		message, err := s.dispatch.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		inbound := message.T()
		if err = message.Ack(); err != nil {
			log.Printf("failed to ack dispatch message %s: %v", inbound.ID, err)
		}
		if inbound.CorrelationID == "" {
			continue
		}
		s.resume(ctx, inbound)
	}
}

// resume stores the message payload as response_<source> on every running
// execution correlated with the message. The fold is load-merge-save without
// a lock against the processor: when a checkpoint races this save the later
// write wins.
func (s *Service) resume(ctx context.Context, inbound *model.Message) {
	for _, executionID := range s.correlations.Executions(inbound.CorrelationID) {
		exec, err := s.executionDAO.Load(ctx, executionID)
		if err != nil || exec.IsTerminal() {
			continue
		}
		exec.SetContextValue("response_"+inbound.Source, inbound.Payload)
		if err = s.executionDAO.Save(ctx, exec); err != nil {
			log.Printf("failed to fold response into execution %s: %v", executionID, err)
		}
	}
}

func (s *Service) publishExecution(ctx context.Context, eventType string, exec *execution.Execution) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[*execution.Execution](s.events)
	if err != nil {
		return
	}
	_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
		CorrelationID: exec.CorrelationID,
		ExecutionID:   exec.ID,
		EventType:     eventType,
	}, exec.Clone()))
}

package orchestrator

import (
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/messaging"
	"github.com/viant/conduit/service/processor"
)

// Option customises the orchestrator service.
type Option func(*Service)

// WithWorkflowDAO sets the definition registry.
func WithWorkflowDAO(workflows *workflow.Service) Option {
	return func(s *Service) {
		s.workflows = workflows
	}
}

// WithExecutionDAO sets the execution store implementation.
func WithExecutionDAO(executionDAO dao.Service[string, execution.Execution]) Option {
	return func(s *Service) {
		s.executionDAO = executionDAO
	}
}

// WithKickoffQueue sets the queue the processor consumes tasks from.
func WithKickoffQueue(queue messaging.Queue[processor.Task]) Option {
	return func(s *Service) {
		s.kickoff = queue
	}
}

// WithDispatchQueue sets the routed-message queue the orchestrator listens
// on to correlate responses with running executions.
func WithDispatchQueue(queue messaging.Queue[model.Message]) Option {
	return func(s *Service) {
		s.dispatch = queue
	}
}

// WithDirectory sets the service directory used to validate service_call
// steps at workflow registration time.
func WithDirectory(registry *directory.Service) Option {
	return func(s *Service) {
		s.directory = registry
	}
}

// WithCorrelationIndex sets the running-execution correlation index.
func WithCorrelationIndex(index *correlation.Index) Option {
	return func(s *Service) {
		s.correlations = index
	}
}

// WithEventService sets the event sink.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

package processor

import (
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/executor"
	"github.com/viant/conduit/service/messaging"
)

// Option customises the processor service.
type Option func(*Service)

// WithExecutionDAO sets the execution store implementation.
func WithExecutionDAO(executionDAO dao.Service[string, execution.Execution]) Option {
	return func(s *Service) {
		s.executionDAO = executionDAO
	}
}

// WithWorkflowDAO sets the definition registry.
func WithWorkflowDAO(workflows *workflow.Service) Option {
	return func(s *Service) {
		s.workflows = workflows
	}
}

// WithQueue sets the kickoff queue implementation.
func WithQueue(queue messaging.Queue[Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the step executor.
func WithExecutor(stepExecutor *executor.Service) Option {
	return func(s *Service) {
		s.executor = stepExecutor
	}
}

// WithEventService sets the event sink.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithCorrelationIndex sets the running-execution correlation index.
func WithCorrelationIndex(index *correlation.Index) Option {
	return func(s *Service) {
		s.correlations = index
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithConfig sets the configuration for the service.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/conduit/internal/clock"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/policy"
	"github.com/viant/conduit/progress"
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/executor"
	"github.com/viant/conduit/service/messaging"
	"github.com/viant/conduit/tracing"
)

// Task is a kickoff message: it tells a worker which execution to walk.
type Task struct {
	ExecutionID string `json:"executionId"`
	WorkflowID  string `json:"workflowId"`
}

// Config represents processor service configuration.
type Config struct {
	// WorkerCount is the number of workers consuming kickoff tasks.
	WorkerCount int
}

// DefaultConfig returns the default processor configuration.
func DefaultConfig() Config {
	return Config{WorkerCount: 5}
}

// Service walks workflow executions step by step, persisting the record after
// every transition so a restart can observe the last reached step.
type Service struct {
	config       Config
	workflows    *workflow.Service
	executionDAO dao.Service[string, execution.Execution]
	executor     *executor.Service
	queue        messaging.Queue[Task]
	events       *event.Service
	correlations *correlation.Index

	workers    []*worker
	workerWg   sync.WaitGroup
	walkWg     sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a processor service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("kickoff queue is required")
	}
	if s.executionDAO == nil {
		return nil, fmt.Errorf("executionDAO service is required")
	}
	if s.workflows == nil {
		return nil, fmt.Errorf("workflow registry is required")
	}
	if s.correlations == nil {
		s.correlations = correlation.NewIndex()
	}
	return s, nil
}

// Start begins consuming kickoff tasks.
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// Shutdown stops the workers and waits for in-flight walks.
func (s *Service) Shutdown() {
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
	s.walkWg.Wait()
}

// run consumes kickoff tasks from the queue.
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled – graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error (e.g. queue closed); back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		task := msg.T()
		if err := msg.Ack(); err != nil {
			log.Printf("worker %d: failed to ack task: %v", w.id, err)
		}
		// One goroutine per execution walk: a delay inside one execution must
		// not stall consumption of the next kickoff.
		w.service.walkWg.Add(1)
		go func(task Task) {
			defer w.service.walkWg.Done()
			if err := w.service.walk(w.ctx, task); err != nil {
				log.Printf("worker %d: execution %s: %v", w.id, task.ExecutionID, err)
			}
		}(*task)
	}
}

// walk drives one execution from its current step to a terminal status.
func (s *Service) walk(ctx context.Context, task Task) (err error) {
	ctx, span := tracing.StartSpan(ctx, "processor.walk", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"execution.id": task.ExecutionID})

	exec, err := s.executionDAO.Load(ctx, task.ExecutionID)
	if err != nil {
		return fmt.Errorf("failed to load execution: %w", err)
	}
	if exec.IsTerminal() {
		return nil
	}
	definition, ok := s.workflows.Get(exec.WorkflowID)
	if !ok {
		exec.Fail(fmt.Sprintf("workflow %s is not registered", exec.WorkflowID))
		_ = s.executionDAO.Save(ctx, exec)
		s.publishExecution(ctx, event.TypeExecutionFailed, exec)
		return fmt.Errorf("workflow %s is not registered", exec.WorkflowID)
	}

	ctx, tracker := progress.WithNewTracker(ctx, exec.ID, definition.Name, nil)
	tracker.Update(progress.Delta{Total: len(definition.Steps)})

	if exec.CorrelationID != "" {
		s.correlations.Register(exec.CorrelationID, exec.ID)
		defer s.correlations.Remove(exec.CorrelationID, exec.ID)
	}

	if exec.Status == execution.StatusPending {
		start := exec.CurrentStep
		if start == "" {
			start = definition.FirstStep()
		}
		exec.Start(start)
	}
	if cancelled, saveErr := s.checkpoint(ctx, exec); cancelled || saveErr != nil {
		return saveErr
	}

	for {
		step := definition.Step(exec.CurrentStep)
		if step == nil {
			exec.Fail(fmt.Sprintf("step %s not found in workflow %s", exec.CurrentStep, definition.Name))
			_ = s.executionDAO.Save(ctx, exec)
			s.publishExecution(ctx, event.TypeExecutionFailed, exec)
			return fmt.Errorf("step %s not found", exec.CurrentStep)
		}

		tracker.Update(progress.Delta{Running: 1})
		output, stepErr := s.executeStep(ctx, definition, step, exec)
		tracker.Update(progress.Delta{Running: -1})

		var next string
		if stepErr == nil {
			tracker.Update(progress.Delta{Completed: 1})
			exec.MergeOutput(step.ID, output)
			next = step.OnSuccess
			if next == "" {
				next = definition.NextAfter(step.ID)
			}
			if next == "" {
				exec.Complete()
				if saveErr := s.executionDAO.Save(ctx, exec); saveErr != nil {
					return saveErr
				}
				s.publishExecution(ctx, event.TypeExecutionCompleted, exec)
				return nil
			}
		} else {
			tracker.Update(progress.Delta{Failed: 1})
			next = step.OnFailure
			if next == "" && definition.OnErrorMode() == model.OnErrorContinue {
				next = definition.NextAfter(step.ID)
				if next == "" {
					exec.Complete()
					if saveErr := s.executionDAO.Save(ctx, exec); saveErr != nil {
						return saveErr
					}
					s.publishExecution(ctx, event.TypeExecutionCompleted, exec)
					return nil
				}
			}
			if next == "" {
				exec.Fail(stepErr.Error())
				if saveErr := s.executionDAO.Save(ctx, exec); saveErr != nil {
					return saveErr
				}
				s.publishExecution(ctx, event.TypeExecutionFailed, exec)
				return nil
			}
		}

		exec.Advance(next)
		if cancelled, saveErr := s.checkpoint(ctx, exec); cancelled || saveErr != nil {
			return saveErr
		}
	}
}

// executeStep runs one step with the workflow retry policy and appends the
// attempt log entries.
func (s *Service) executeStep(ctx context.Context, definition *model.Workflow, step *model.Step, exec *execution.Execution) (interface{}, error) {
	var retry *policy.Retry
	if definition.ErrorHandling != nil {
		retry = definition.ErrorHandling.Retry
	}
	retries := 0
	for {
		started := clock.Now()
		output, err := s.executor.Execute(ctx, step, exec.ContextSnapshot(), exec.CorrelationID)
		entry := &execution.LogEntry{
			StepID:     step.ID,
			StepName:   step.Name,
			Status:     execution.LogCompleted,
			Input:      step.Config,
			Output:     output,
			DurationMs: clock.Now().Sub(started).Milliseconds(),
		}
		if err != nil {
			entry.Status = execution.LogFailed
			entry.Error = err.Error()
			entry.Output = nil
		}
		exec.AppendLog(entry)
		if err == nil {
			return output, nil
		}
		if ctx.Err() != nil || !retry.ShouldRetry(retries) {
			return output, err
		}
		retries++
		select {
		case <-time.After(retry.Backoff(retries)):
		case <-ctx.Done():
			return output, err
		}
	}
}

// checkpoint persists the walk position. When the stored record was cancelled
// out of band the cancellation is adopted and the walk stops instead of
// overwriting it.
func (s *Service) checkpoint(ctx context.Context, exec *execution.Execution) (bool, error) {
	stored, err := s.executionDAO.Load(ctx, exec.ID)
	if err == nil && stored.Status == execution.StatusCancelled {
		exec.Cancel()
		return true, nil
	}
	if err := s.executionDAO.Save(ctx, exec); err != nil {
		return false, fmt.Errorf("failed to checkpoint execution %s: %w", exec.ID, err)
	}
	return false, nil
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

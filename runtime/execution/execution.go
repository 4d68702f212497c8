// Package execution defines the persisted state of a single workflow run:
// its status, variable context and per-step log.
package execution

import (
	"sync"
	"time"

	"github.com/viant/conduit/internal/clock"
)

// LogEntry records one step attempt within an execution.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	StepID     string                 `json:"stepId"`
	StepName   string                 `json:"stepName,omitempty"`
	Status     LogStatus              `json:"status"`
	Input      interface{}            `json:"input,omitempty"`
	Output     interface{}            `json:"output,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMs int64                  `json:"durationMs,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Execution is the persisted state machine record of one workflow run. It is
// saved after every step transition so that a restart can observe the last
// reached step.
type Execution struct {
	ID            string                 `json:"id"`
	WorkflowID    string                 `json:"workflowId"`
	CorrelationID string                 `json:"correlationId,omitempty"`
	Status        Status                 `json:"status"`
	CurrentStep   string                 `json:"currentStep,omitempty"`
	Context       map[string]interface{} `json:"context,omitempty"`
	Log           []*LogEntry            `json:"executionLog,omitempty"`
	ErrorMessage  string                 `json:"errorMessage,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	CompletedAt   *time.Time             `json:"completedAt,omitempty"`

	mux sync.Mutex `json:"-"`
}

// New returns a pending execution seeded with the supplied context.
func New(id, workflowID, correlationID string, context map[string]interface{}) *Execution {
	if context == nil {
		context = map[string]interface{}{}
	}
	return &Execution{
		ID:            id,
		WorkflowID:    workflowID,
		CorrelationID: correlationID,
		Status:        StatusPending,
		Context:       context,
		CreatedAt:     clock.Now(),
	}
}

// Start transitions a pending execution to running.
func (e *Execution) Start(stepID string) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Status = StatusRunning
	e.CurrentStep = stepID
}

// Advance moves the cursor to the next step.
func (e *Execution) Advance(stepID string) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.CurrentStep = stepID
}

// Complete marks the execution completed.
func (e *Execution) Complete() {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Status = StatusCompleted
	e.CurrentStep = ""
	now := clock.Now()
	e.CompletedAt = &now
}

// Fail marks the execution failed with the supplied message.
func (e *Execution) Fail(message string) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Status = StatusFailed
	e.ErrorMessage = message
	now := clock.Now()
	e.CompletedAt = &now
}

// Cancel marks the execution cancelled; a no-op when already terminal.
func (e *Execution) Cancel() bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.Status.IsTerminal() {
		return false
	}
	e.Status = StatusCancelled
	now := clock.Now()
	e.CompletedAt = &now
	return true
}

// IsTerminal reports whether the execution reached a final status.
func (e *Execution) IsTerminal() bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.Status.IsTerminal()
}

// AppendLog adds a step log entry stamped with the current time.
func (e *Execution) AppendLog(entry *LogEntry) {
	if entry == nil {
		return
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = clock.Now()
	}
	e.Log = append(e.Log, entry)
}

// MergeOutput folds a map step output into the execution context; non-map
// outputs are stored under result_<stepID>.
func (e *Execution) MergeOutput(stepID string, output interface{}) {
	if output == nil {
		return
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	if asMap, ok := output.(map[string]interface{}); ok {
		for k, v := range asMap {
			e.Context[k] = v
		}
		return
	}
	e.Context["result_"+stepID] = output
}

// SetContextValue stores a single context variable.
func (e *Execution) SetContextValue(key string, value interface{}) {
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
}

// ContextSnapshot returns a shallow copy of the variable context.
func (e *Execution) ContextSnapshot() map[string]interface{} {
	e.mux.Lock()
	defer e.mux.Unlock()
	snapshot := make(map[string]interface{}, len(e.Context))
	for k, v := range e.Context {
		snapshot[k] = v
	}
	return snapshot
}

// Clone returns a deep-enough copy safe for concurrent readers; context is
// copied shallowly, the log slice is copied entry by entry.
func (e *Execution) Clone() *Execution {
	e.mux.Lock()
	defer e.mux.Unlock()
	clone := &Execution{
		ID:            e.ID,
		WorkflowID:    e.WorkflowID,
		CorrelationID: e.CorrelationID,
		Status:        e.Status,
		CurrentStep:   e.CurrentStep,
		ErrorMessage:  e.ErrorMessage,
		CreatedAt:     e.CreatedAt,
	}
	if e.CompletedAt != nil {
		completed := *e.CompletedAt
		clone.CompletedAt = &completed
	}
	if e.Context != nil {
		clone.Context = make(map[string]interface{}, len(e.Context))
		for k, v := range e.Context {
			clone.Context[k] = v
		}
	}
	if len(e.Log) > 0 {
		clone.Log = make([]*LogEntry, len(e.Log))
		for i, entry := range e.Log {
			copied := *entry
			clone.Log[i] = &copied
		}
	}
	return clone
}

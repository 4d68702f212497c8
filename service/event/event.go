package event

import "time"

// Context carries the engine coordinates an event was emitted from.
type Context struct {
	CorrelationID string `json:"correlationId,omitempty"`
	ExecutionID   string `json:"executionId,omitempty"`
	MessageID     string `json:"messageId,omitempty"`
	EventType     string `json:"eventType"`
	Service       string `json:"service,omitempty"`
	Method        string `json:"method,omitempty"`
	TimeTakenMs   int    `json:"timeTakenMs,omitempty"`
}

// Engine event types. Every publish is fire-and-forget; the engine functions
// with no listener attached.
const (
	TypeExecutionStarted   = "workflow.execution.started"
	TypeExecutionCompleted = "workflow.execution.completed"
	TypeExecutionFailed    = "workflow.execution.failed"
	TypeExecutionCancelled = "workflow.execution.cancelled"
	TypeMessageRouted      = "message.routed"
	TypeMessageNoRoute     = "message.no_route"
	TypeMessageRouteError  = "message.route.error"
	TypeServiceCallSuccess = "service.call.success"
	TypeServiceCallError   = "service.call.error"
)

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

package model

import (
	"time"
)

// Message is the unit of traffic flowing through the bus.  A message is
// immutable once dispatched, except Destination which is stamped per fan-out
// target on a per-destination copy.
type Message struct {
	ID            string                 `json:"id" yaml:"id"`
	CorrelationID string                 `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
	Source        string                 `json:"source" yaml:"source"`
	Destination   string                 `json:"destination,omitempty" yaml:"destination,omitempty"`
	MessageType   string                 `json:"messageType" yaml:"messageType"`
	Payload       interface{}            `json:"payload,omitempty" yaml:"payload,omitempty"`
	Headers       map[string]interface{} `json:"headers,omitempty" yaml:"headers,omitempty"`
	Timestamp     time.Time              `json:"timestamp" yaml:"timestamp"`
	Priority      int                    `json:"priority,omitempty" yaml:"priority,omitempty"`
	TTLMs         int                    `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// Clone returns a copy of the message with its own headers map so that
// per-destination copies can be mutated independently.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	clone := *m
	if m.Headers != nil {
		clone.Headers = make(map[string]interface{}, len(m.Headers))
		for k, v := range m.Headers {
			clone.Headers[k] = v
		}
	}
	return &clone
}

// Message log statuses recorded by the router, one terminal entry per message
// plus one entry per processed route.
const (
	LogStatusReceived = "RECEIVED"
	LogStatusRouted   = "ROUTED"
	LogStatusNoRoute  = "NO_ROUTE"
	LogStatusError    = "ERROR"
)

// MessageLog is the router's audit record.
type MessageLog struct {
	ID            string                 `json:"id"`
	MessageID     string                 `json:"messageId"`
	CorrelationID string                 `json:"correlationId,omitempty"`
	Source        string                 `json:"source"`
	Destination   string                 `json:"destination,omitempty"`
	MessageType   string                 `json:"messageType"`
	Payload       interface{}            `json:"payload,omitempty"`
	Headers       map[string]interface{} `json:"headers,omitempty"`
	Status        string                 `json:"status"`
	RouteName     string                 `json:"routeName,omitempty"`
	ErrorMessage  string                 `json:"errorMessage,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// Clone returns a shallow copy of the log entry.
func (l *MessageLog) Clone() *MessageLog {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}

package model

import "time"

// CallStatus is the lifecycle state of one outbound service call.
type CallStatus string

const (
	CallStatusPending   CallStatus = "pending"
	CallStatusSuccess   CallStatus = "success"
	CallStatusFailed    CallStatus = "failed"
	CallStatusTimeout   CallStatus = "timeout"
	CallStatusCancelled CallStatus = "cancelled"
)

// ServiceCall is the audit record of one outbound call, owned by the invoker
// for the lifetime of the call and persisted after the terminal outcome.
// Status, response and retry fields are updated in place as attempts proceed;
// everything else is append-only.
type ServiceCall struct {
	ID             string            `json:"id"`
	CorrelationID  string            `json:"correlationId"`
	ClientID       string            `json:"clientId,omitempty"`
	ServiceName    string            `json:"serviceName,omitempty"`
	ServiceVersion string            `json:"serviceVersion,omitempty"`
	EndpointURL    string            `json:"endpointUrl"`
	Method         string            `json:"method"`
	RequestHeaders map[string]string `json:"requestHeaders,omitempty"`
	RequestBody    interface{}       `json:"requestBody,omitempty"`
	QueryParams    map[string]string `json:"queryParams,omitempty"`

	ResponseStatus        int         `json:"responseStatus,omitempty"`
	ResponseBody          interface{} `json:"responseBody,omitempty"`
	ProjectedResponseBody interface{} `json:"projectedResponseBody,omitempty"`
	RequestedFields       []string    `json:"requestedFields,omitempty"`

	Status          CallStatus `json:"status"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	RetryCount      int        `json:"retryCount"`
	MaxRetries      int        `json:"maxRetries"`
	ExecutionTimeMs int64      `json:"executionTimeMs,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CallStats aggregates outcomes over a set of call records.
type CallStats struct {
	Total              int     `json:"total"`
	Successful         int     `json:"successful"`
	Failed             int     `json:"failed"`
	SuccessRate        float64 `json:"successRate"`
	AvgExecutionTimeMs int64   `json:"avgExecutionTimeMs"`
}

// Clone returns a copy of the record with its own maps.
func (c *ServiceCall) Clone() *ServiceCall {
	if c == nil {
		return nil
	}
	clone := *c
	if c.RequestHeaders != nil {
		clone.RequestHeaders = make(map[string]string, len(c.RequestHeaders))
		for k, v := range c.RequestHeaders {
			clone.RequestHeaders[k] = v
		}
	}
	if c.QueryParams != nil {
		clone.QueryParams = make(map[string]string, len(c.QueryParams))
		for k, v := range c.QueryParams {
			clone.QueryParams[k] = v
		}
	}
	clone.RequestedFields = append([]string(nil), c.RequestedFields...)
	return &clone
}

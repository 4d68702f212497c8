// Package transport abstracts the outbound HTTP surface so the invoker can be
// tested against a stub and swapped onto custom clients.
package transport

import (
	"context"
)

// Request is one outbound call.
type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string]string
	Body        interface{}
}

// Response is the raw outcome of one attempt.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// Client performs a single request attempt; retries live above this layer.
type Client interface {
	Do(ctx context.Context, request *Request) (*Response, error)
}

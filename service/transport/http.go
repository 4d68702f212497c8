package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient is the net/http backed transport.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a transport with the supplied per-attempt timeout;
// zero keeps the client default.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Do performs one HTTP attempt. Bodies are JSON encoded for methods that
// carry one; non-2xx statuses are returned as responses, not errors.
func (c *HTTPClient) Do(ctx context.Context, request *Request) (*Response, error) {
	var body io.Reader
	if request.Body != nil && carriesBody(request.Method) {
		data, err := json.Marshal(request.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, request.URL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	for key, value := range request.Headers {
		httpRequest.Header.Set(key, value)
	}
	if len(request.QueryParams) > 0 {
		query := url.Values{}
		for key, value := range request.QueryParams {
			query.Set(key, value)
		}
		httpRequest.URL.RawQuery = query.Encode()
	}

	httpResponse, err := c.client.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer httpResponse.Body.Close()

	data, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	headers := make(map[string]string, len(httpResponse.Header))
	for key := range httpResponse.Header {
		headers[key] = httpResponse.Header.Get(key)
	}
	return &Response{
		StatusCode: httpResponse.StatusCode,
		Body:       data,
		Headers:    headers,
	}, nil
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

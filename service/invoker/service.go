// Package invoker performs resilient outbound service calls: endpoint
// resolution through the directory, bounded classified retries with
// exponential backoff, response projection and a persisted audit record per
// call.
package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/viant/conduit/internal/clock"
	"github.com/viant/conduit/internal/idgen"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/policy"
	"github.com/viant/conduit/service/clients"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/projector"
	"github.com/viant/conduit/service/transport"
	"github.com/viant/conduit/tracing"
)

// CorrelationHeader is stamped on every outbound request carrying a
// correlation id.
const CorrelationHeader = "X-Correlation-ID"

// DefaultTimeout bounds a single attempt when the request does not override
// it.
const DefaultTimeout = 30 * time.Second

// Request describes one logical outbound call.
type Request struct {
	CorrelationID string
	ClientID      string
	Service       string
	Version       string
	Method        string
	Path          string
	Headers       map[string]string
	QueryParams   map[string]string
	Body          interface{}
	Projection    *projector.Projection
	TimeoutMs     int
	// MaxRetries overrides the invoker retry budget for this call only; zero
	// keeps the configured policy.
	MaxRetries int
}

// Service is the resilient service invoker.
type Service struct {
	transport transport.Client
	calls     dao.Service[string, model.ServiceCall]
	directory *directory.Service
	clients   *clients.Service
	projector *projector.Service
	events    *event.Service
	retry     *policy.Retry
	timeout   time.Duration
}

// Option customises the invoker.
type Option func(*Service)

// WithDefaultTimeout overrides the per-attempt bound applied when a request
// does not carry its own timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New creates an invoker; retry may be nil to use the default policy.
func New(transportClient transport.Client, calls dao.Service[string, model.ServiceCall],
	dir *directory.Service, clientRegistry *clients.Service, proj *projector.Service,
	events *event.Service, retry *policy.Retry, options ...Option) *Service {
	if retry == nil {
		retry = policy.Default()
	}
	if proj == nil {
		proj = projector.New()
	}
	ret := &Service{
		transport: transportClient,
		calls:     calls,
		directory: dir,
		clients:   clientRegistry,
		projector: proj,
		events:    events,
		retry:     retry,
		timeout:   DefaultTimeout,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Call resolves the target service, validates the effective projection and
// runs the bounded attempt loop. The returned record reflects the terminal
// outcome and has already been persisted; err is non-nil for any non-success.
func (s *Service) Call(ctx context.Context, request *Request) (*model.ServiceCall, error) {
	ctx, span := tracing.StartSpan(ctx, "invoker.Call", "CLIENT")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}
	retry := s.retry
	if request.MaxRetries > 0 {
		retry = s.retry.Clone()
		retry.MaxRetries = request.MaxRetries
	}
	record := &model.ServiceCall{
		ID:            idgen.New(),
		CorrelationID: request.CorrelationID,
		ClientID:      request.ClientID,
		ServiceName:   request.Service,
		Method:        method,
		RequestBody:   request.Body,
		QueryParams:   request.QueryParams,
		Status:        model.CallStatusPending,
		MaxRetries:    retry.MaxRetries,
		CreatedAt:     clock.Now(),
	}

	entry, err := s.directory.Resolve(request.Service, request.Version)
	if err != nil {
		return s.fail(ctx, record, model.CallStatusFailed, err)
	}
	record.ServiceVersion = entry.Version
	record.EndpointURL = composeURL(entry.Endpoint, request.Path)

	var clientDefault *projector.Projection
	if projection := s.clients.DefaultProjection(request.ClientID, request.Service); projection != nil {
		clientDefault = &projector.Projection{Preset: projection.Preset, Fields: projection.Fields}
	}
	fields, err := s.projector.Resolve(request.Projection, clientDefault, entry)
	if err != nil {
		return s.fail(ctx, record, model.CallStatusFailed, err)
	}
	if err = s.projector.Validate(fields, entry); err != nil {
		return s.fail(ctx, record, model.CallStatusFailed, err)
	}
	record.RequestedFields = fields

	record.RequestHeaders = make(map[string]string, len(request.Headers)+1)
	for key, value := range request.Headers {
		record.RequestHeaders[key] = value
	}
	if request.CorrelationID != "" {
		record.RequestHeaders[CorrelationHeader] = request.CorrelationID
	}
	if saveErr := s.calls.Save(ctx, record); saveErr != nil {
		err = saveErr
		return record, err
	}

	err = s.invoke(ctx, record, request, retry)
	return record, err
}

// invoke runs the attempt loop under the effective retry policy, persisting
// the record after every retry decision and on the terminal outcome.
func (s *Service) invoke(ctx context.Context, record *model.ServiceCall, request *Request, retry *policy.Retry) error {
	timeout := s.timeout
	if request.TimeoutMs > 0 {
		timeout = time.Duration(request.TimeoutMs) * time.Millisecond
	}
	started := clock.Now()
	outbound := &transport.Request{
		Method:      record.Method,
		URL:         record.EndpointURL,
		Headers:     record.RequestHeaders,
		QueryParams: record.QueryParams,
		Body:        record.RequestBody,
	}

	for {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		response, err := s.transport.Do(attemptCtx, outbound)
		cancel()

		classified := classify(response, err)
		if classified == nil {
			record.ResponseStatus = response.StatusCode
			if decodeErr := s.accept(record, response); decodeErr != nil {
				record.ExecutionTimeMs = clock.Now().Sub(started).Milliseconds()
				return s.finish(ctx, record, model.CallStatusFailed, decodeErr)
			}
			record.ExecutionTimeMs = clock.Now().Sub(started).Milliseconds()
			return s.finish(ctx, record, model.CallStatusSuccess, nil)
		}
		record.ResponseStatus = classified.Status
		record.ErrorMessage = classified.Error()

		if ctx.Err() != nil {
			record.ExecutionTimeMs = clock.Now().Sub(started).Milliseconds()
			return s.finish(ctx, record, model.CallStatusCancelled, ctx.Err())
		}
		if !classified.Retryable || !retry.ShouldRetry(record.RetryCount) {
			record.ExecutionTimeMs = clock.Now().Sub(started).Milliseconds()
			status := model.CallStatusFailed
			if classified.Timeout {
				status = model.CallStatusTimeout
			}
			return s.finish(ctx, record, status, classified)
		}

		record.RetryCount++
		if saveErr := s.calls.Save(ctx, record); saveErr != nil {
			return saveErr
		}
		select {
		case <-time.After(retry.Backoff(record.RetryCount)):
		case <-ctx.Done():
			record.ExecutionTimeMs = clock.Now().Sub(started).Milliseconds()
			return s.finish(ctx, record, model.CallStatusCancelled, ctx.Err())
		}
	}
}

// accept decodes the response body and applies the resolved projection.
func (s *Service) accept(record *model.ServiceCall, response *transport.Response) error {
	if len(response.Body) > 0 {
		var decoded interface{}
		if err := json.Unmarshal(response.Body, &decoded); err != nil {
			record.ResponseBody = string(response.Body)
		} else {
			record.ResponseBody = decoded
		}
	}
	if len(record.RequestedFields) == 0 {
		record.ProjectedResponseBody = record.ResponseBody
		return nil
	}
	projected, err := s.projector.Apply(record.ResponseBody, record.RequestedFields)
	if err != nil {
		return fmt.Errorf("failed to project response: %w", err)
	}
	record.ProjectedResponseBody = projected
	return nil
}

// finish persists the terminal record and emits the call event.
func (s *Service) finish(ctx context.Context, record *model.ServiceCall, status model.CallStatus, cause error) error {
	record.Status = status
	if cause != nil && record.ErrorMessage == "" {
		record.ErrorMessage = cause.Error()
	}
	if err := s.calls.Save(ctx, record); err != nil {
		return err
	}
	s.publish(ctx, record)
	if cause == nil {
		return nil
	}
	return fmt.Errorf("call to %s failed after %d retries: %w", record.ServiceName, record.RetryCount, cause)
}

func (s *Service) publish(ctx context.Context, record *model.ServiceCall) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[model.ServiceCall](s.events)
	if err != nil {
		return
	}
	eventType := event.TypeServiceCallSuccess
	if record.Status != model.CallStatusSuccess {
		eventType = event.TypeServiceCallError
	}
	_ = publisher.Publish(ctx, event.NewEvent(&event.Context{
		CorrelationID: record.CorrelationID,
		EventType:     eventType,
		Service:       record.ServiceName,
		Method:        record.Method,
		TimeTakenMs:   int(record.ExecutionTimeMs),
	}, *record.Clone()))
}

func (s *Service) fail(ctx context.Context, record *model.ServiceCall, status model.CallStatus, cause error) (*model.ServiceCall, error) {
	if err := s.finish(ctx, record, status, cause); err != nil && !errors.Is(err, cause) {
		return record, err
	}
	return record, cause
}

// composeURL joins a service endpoint base with a call path, normalising
// slashes at the seam.
func composeURL(endpoint, path string) string {
	if path == "" {
		return endpoint
	}
	return strings.TrimSuffix(endpoint, "/") + "/" + strings.TrimPrefix(path, "/")
}

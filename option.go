package conduit

import (
	"github.com/viant/afs/storage"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/policy"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/dao"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/messaging"
	"github.com/viant/conduit/service/meta"
	"github.com/viant/conduit/service/processor"
	"github.com/viant/conduit/service/transform"
	"github.com/viant/conduit/service/transport"
	"github.com/viant/conduit/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the engine service.
type Option func(s *Service)

// WithConfig replaces the whole engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithTransport sets the HTTP transport used by the service invoker.
func WithTransport(client transport.Client) Option {
	return func(s *Service) {
		s.transport = client
	}
}

// WithEventService sets the event pub/sub service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithMetaService sets the definition loader.
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the base URL definitions are resolved against.
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions sets file system options for the definition loader,
// for example an embed.FS.
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithExecutionDAO sets the execution store implementation.
func WithExecutionDAO(executionDAO dao.Service[string, execution.Execution]) Option {
	return func(s *Service) {
		s.executionDAO = executionDAO
	}
}

// WithCallDAO sets the service-call audit store implementation.
func WithCallDAO(callDAO dao.Service[string, model.ServiceCall]) Option {
	return func(s *Service) {
		s.callDAO = callDAO
	}
}

// WithMessageLogDAO sets the message audit store implementation.
func WithMessageLogDAO(logDAO dao.Service[string, model.MessageLog]) Option {
	return func(s *Service) {
		s.msglogDAO = logDAO
	}
}

// WithProcessorWorkers sets the number of kickoff workers.
func WithProcessorWorkers(count int) Option {
	return func(s *Service) {
		s.config.Processor.WorkerCount = count
	}
}

// WithRetryPolicy sets the service-call retry policy.
func WithRetryPolicy(retry *policy.Retry) Option {
	return func(s *Service) {
		s.retry = retry
	}
}

// WithKickoffQueue sets the queue carrying execution kickoff tasks.
func WithKickoffQueue(queue messaging.Queue[processor.Task]) Option {
	return func(s *Service) {
		s.kickoff = queue
	}
}

// WithDispatchQueue sets the queue routed messages are dispatched to.
func WithDispatchQueue(queue messaging.Queue[model.Message]) Option {
	return func(s *Service) {
		s.dispatch = queue
	}
}

// WithTransforms sets the named message-transform registry.
func WithTransforms(registry *transform.Registry) Option {
	return func(s *Service) {
		s.transforms = registry
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin. The first successful
// initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}

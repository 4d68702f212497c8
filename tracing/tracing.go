package tracing

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// scopeName identifies the instrumentation scope on every span.
const scopeName = "github.com/viant/conduit"

var (
	installOnce sync.Once
	installErr  error
)

// Init installs a stdout trace exporter. When outputFile is empty the spans
// are written to os.Stdout. The first successful installation wins.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return install(serviceName, serviceVersion, exporter)
}

// InitWithExporter installs the supplied SpanExporter (OTLP, Jaeger, Zipkin,
// ...). The first successful installation wins.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	return install(serviceName, serviceVersion, exporter)
}

func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	installOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			))
		if err != nil {
			installErr = err
			return
		}
		otel.SetTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		))
	})
	return installErr
}

// Span wraps an otel span so call sites stay decoupled from the otel packages.
type Span struct {
	span trace.Span
}

var spanKinds = map[string]trace.SpanKind{
	"SERVER":   trace.SpanKindServer,
	"CLIENT":   trace.SpanKindClient,
	"PRODUCER": trace.SpanKindProducer,
	"CONSUMER": trace.SpanKindConsumer,
	"INTERNAL": trace.SpanKindInternal,
}

// StartSpan opens a child span of whatever span the context carries. Span
// names follow the "<component>.<operation>" convention; the component prefix
// is recorded as the bus.component attribute. Unknown kinds fall back to
// INTERNAL.
func StartSpan(ctx context.Context, name, kind string) (context.Context, *Span) {
	spanKind, ok := spanKinds[kind]
	if !ok {
		spanKind = trace.SpanKindInternal
	}
	ctx, span := otel.Tracer(scopeName).Start(ctx, name, trace.WithSpanKind(spanKind))
	if i := strings.IndexByte(name, '.'); i > 0 {
		span.SetAttributes(attribute.String("bus.component", name[:i]))
	}
	return ctx, &Span{span: span}
}

// WithAttributes attaches string attributes to the span.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	s.span.SetAttributes(kvs...)
	return s
}

// EndSpan records err on the span and closes it. A nil span is a no-op so
// call sites can defer unconditionally.
func EndSpan(s *Span, err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

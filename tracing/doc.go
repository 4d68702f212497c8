// Package tracing instruments the engine with OpenTelemetry spans. Call sites
// go through StartSpan/EndSpan and never touch the otel API directly; an
// exporter is installed once per process via Init or InitWithExporter and
// spans are no-ops until then.
package tracing

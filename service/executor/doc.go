// Package executor bridges workflow steps enqueued by the processor with the
// backing handlers.  It is effectively a glue layer between the high-level
// workflow model and the invoker, expression and transformation services.
package executor

// Package policy defines the declarative retry/backoff settings shared by the
// service invoker and workflow-level error handling.  A nil *Retry means
// "single attempt, no backoff" and is therefore the zero-cost default.
package policy

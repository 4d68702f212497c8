// Package idgen wraps the UUID generator behind a stubbable function so tests
// can pin message, execution and call identifiers. Callers treat the returned
// identifiers as opaque strings.
package idgen

package dao

import "errors"

// Store sentinels shared by every execution, call and message-log store so
// callers detect conditions via errors.Is instead of string comparisons.
var (
	// ErrNotFound is returned when the requested record does not exist in the
	// underlying store.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied id/key is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)

// Package dao defines the generic persistence contract shared by the
// execution, service-call and message-log stores, together with the query
// Parameter criteria and common sentinel errors.
package dao

import (
	"context"
)

// Service is the store contract for one record type. Implementations return
// defensive copies from Load/List so callers can mutate records freely before
// the next Save.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

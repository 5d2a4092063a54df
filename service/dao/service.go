package dao

import (
	"context"
)

// Service is the storage boundary of the engine. The engine mutates claims
// in memory and hands them to a Service implementation - durable persistence
// is the caller's responsibility and any implementation must preserve the
// claim shape losslessly (history order, exact state values).
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

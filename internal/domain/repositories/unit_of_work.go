package repositories

import "context"

// UnitOfWork groups repository calls into one atomic change.
//
// Repositories called with the context handed to fn join the open transaction.
// Nested Do calls reuse the outer transaction instead of opening a savepoint.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock returns a context whose row reads take a write lock for the
	// rest of the transaction. It has no effect outside Do.
	WithLock(ctx context.Context) context.Context
}

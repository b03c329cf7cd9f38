package store

import "context"

// Fetcher produces a fresh value for a Store.
type Fetcher[T any] interface {
	// Fetch returns a new value. current is the store being refreshed, or
	// nil while the store is being created, so delta-aware fetchers can look
	// at what is already cached.
	Fetch(ctx context.Context, current *Store[T]) (T, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc[T any] func(ctx context.Context, current *Store[T]) (T, error)

// Fetch implements Fetcher.
func (f FetchFunc[T]) Fetch(ctx context.Context, current *Store[T]) (T, error) {
	return f(ctx, current)
}

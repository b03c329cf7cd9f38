package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/kitchensink/pkg/store"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrKeyNotFound is returned when the source key does not exist.
	ErrKeyNotFound = errors.New("redis key not found")
)

// Fetcher implements store.Fetcher by reading one Redis key and decoding it
// with the store's codec.
type Fetcher[T any] struct {
	client *backend.Client
	prefix string
	key    string
	codec  store.Codec[T]
}

var _ store.Fetcher[struct{}] = (*Fetcher[struct{}])(nil)

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	prefix string
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// NewFetcher creates a fetcher reading key from an existing client.
func NewFetcher[T any](client *backend.Client, key string, c store.Codec[T], opts ...Option) *Fetcher[T] {
	o := options{prefix: "kitchensink:"}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fetcher[T]{
		client: client,
		prefix: o.prefix,
		key:    key,
		codec:  c,
	}
}

// New creates a fetcher with its own client.
func New[T any](address, password string, db int, key string, c store.Codec[T], opts ...Option) *Fetcher[T] {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFetcher(rdb, key, c, opts...)
}

// Key returns the full Redis key read by the fetcher.
func (f *Fetcher[T]) Key() string {
	return f.prefix + f.key
}

// Fetch reads and decodes the key. current is unused: the key always holds
// the complete value.
func (f *Fetcher[T]) Fetch(ctx context.Context, current *store.Store[T]) (T, error) {
	var zero T

	data, err := f.client.Get(ctx, f.Key()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return zero, fmt.Errorf("%w: %s", ErrKeyNotFound, f.Key())
		}
		return zero, fmt.Errorf("redis error reading %s: %w", f.Key(), err)
	}

	v, err := f.codec.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", f.Key(), err)
	}
	return v, nil
}

// Publish encodes v and stores it under the fetcher's key, for producers
// feeding the stores that read it.
func (f *Fetcher[T]) Publish(ctx context.Context, v T) error {
	data, err := f.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", f.Key(), err)
	}
	if err := f.client.Set(ctx, f.Key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis error writing %s: %w", f.Key(), err)
	}
	return nil
}

// Close releases the underlying client.
func (f *Fetcher[T]) Close() error {
	return f.client.Close()
}

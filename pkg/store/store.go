package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/kitchensink/internal/logging"
	"github.com/aretw0/kitchensink/pkg/metrics"
)

var (
	// ErrDecode is returned when the store file exists but its bytes cannot be converted into T.
	ErrDecode = errors.New("failed to decode store file")

	// ErrEncode is returned when a value cannot be converted into bytes.
	ErrEncode = errors.New("failed to encode store value")
)

// Codec converts T to and from the bytes kept on disk.
// The codec package provides JSON, YAML and MessagePack implementations.
type Codec[T any] interface {
	Marshal(v T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// Defaulter is implemented by value types whose default is not their zero
// value (e.g. a struct holding a map). NewWithDefault uses it when present.
type Defaulter[T any] interface {
	Default() T
}

// Store is a value of type T cached in memory and persisted to a file.
// It is safe for concurrent use; share it by pointer.
type Store[T any] struct {
	path    string
	codec   Codec[T]
	logger  *slog.Logger
	metrics *metrics.Metrics

	// writeMu serializes writers so the file and memory are updated in the same order.
	writeMu   sync.Mutex
	listeners []func(T)

	mu    sync.RWMutex
	value T
}

// NewWithDefault loads the store at path. If the file does not exist, the
// default value of T (see Defaulter) is persisted and used. Default may be
// declared on T or on *T.
func NewWithDefault[T any](path string, c Codec[T], opts ...Option) (*Store[T], error) {
	return NewOrGet(path, c, func() (T, error) {
		return defaultOf[T](), nil
	}, opts...)
}

// defaultOf returns T's Default(), or the zero value when T has none.
func defaultOf[T any]() T {
	var zero T
	if d, ok := any(zero).(Defaulter[T]); ok {
		return d.Default()
	}
	if d, ok := any(&zero).(Defaulter[T]); ok {
		return d.Default()
	}
	return zero
}

// NewOrGet loads the store at path. If the file does not exist, getter
// produces the seed value, which is persisted before the store is returned.
func NewOrGet[T any](path string, c Codec[T], getter func() (T, error), opts ...Option) (*Store[T], error) {
	return open(context.Background(), path, c, opts, func(context.Context) (T, error) {
		return getter()
	})
}

// NewWithFetcher loads the store at path. If the file does not exist, the
// seed value is fetched (with no current store) and persisted.
func NewWithFetcher[T any](ctx context.Context, path string, c Codec[T], f Fetcher[T], opts ...Option) (*Store[T], error) {
	return open(ctx, path, c, opts, func(ctx context.Context) (T, error) {
		return f.Fetch(ctx, nil)
	})
}

func open[T any](ctx context.Context, path string, c Codec[T], opts []Option, seed func(context.Context) (T, error)) (*Store[T], error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[T]{
		path:    path,
		codec:   c,
		logger:  o.logger,
		metrics: o.metrics,
	}

	data, err := os.ReadFile(path)
	if err == nil {
		v, err := c.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
		}
		s.value = v
		s.logger.Debug("store loaded", "path", path, "bytes", len(data))
		return s, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		if !o.reseedOnReadError {
			return nil, fmt.Errorf("failed to read store %s: %w", path, err)
		}
		s.logger.Warn("store file unreadable, reseeding", "path", path, "err", err)
	}

	v, err := seed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed store %s: %w", path, err)
	}
	if err := s.persist(v); err != nil {
		return nil, err
	}
	s.value = v
	s.logger.Info("store seeded", "path", path)
	return s, nil
}

// Path returns the backing file.
func (s *Store[T]) Path() string {
	return s.path
}

func (s *Store[T]) persist(v T) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrEncode, s.path, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to persist store %s: %w", s.path, err)
	}
	return nil
}

// Write persists v and then makes it the in-memory value. If persisting
// fails the in-memory value is left untouched.
func (s *Store[T]) Write(v T) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.persist(v)
	s.metrics.StoreWrite(s.path, err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.value = v
	s.mu.Unlock()

	for _, fn := range s.listeners {
		fn(v)
	}
	return nil
}

// OnWrite registers fn to be called with every value successfully written.
// Listeners run on the writer's goroutine once the new value is visible to
// readers, and must not call Write themselves.
func (s *Store[T]) OnWrite(fn func(T)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ReadGuard holds the store's read lock until Release is called.
type ReadGuard[T any] struct {
	mu    *sync.RWMutex
	once  sync.Once
	value T
}

// Value returns the value observed when the guard was taken.
func (g *ReadGuard[T]) Value() T {
	return g.value
}

// Release drops the read lock. It is safe to call more than once.
func (g *ReadGuard[T]) Release() {
	g.once.Do(g.mu.RUnlock)
}

// Read takes the shared lock and returns a guard over the current value.
// Concurrent readers do not block each other; a writer waits for all guards
// to be released. Always pair with Release, usually via defer.
func (s *Store[T]) Read() *ReadGuard[T] {
	s.mu.RLock()
	return &ReadGuard[T]{mu: &s.mu, value: s.value}
}

// View calls fn with the current value while holding the read lock.
func (s *Store[T]) View(fn func(v T) error) error {
	g := s.Read()
	defer g.Release()
	return fn(g.Value())
}

// Snapshot returns the current value. Reference types inside T (maps,
// slices, pointers) are shared with the store and must not be mutated.
func (s *Store[T]) Snapshot() T {
	g := s.Read()
	defer g.Release()
	return g.Value()
}

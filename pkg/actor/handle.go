package actor

import (
	"context"
	"sync"

	"github.com/aretw0/kitchensink/pkg/metrics"
)

// Handle is the sending side of an actor's mailbox. It is safe for
// concurrent use and may be shared freely, including with the actor itself.
type Handle[T any] struct {
	name    string
	mailbox chan T
	done    chan struct{}
	metrics *metrics.Metrics

	closeOnce sync.Once
	closed    chan struct{}
}

func newHandle[T any](name string, m *metrics.Metrics) *Handle[T] {
	return &Handle[T]{
		name:    name,
		mailbox: make(chan T, MailboxSize),
		done:    make(chan struct{}),
		closed:  make(chan struct{}),
		metrics: m,
	}
}

// Name returns the actor's name.
func (h *Handle[T]) Name() string {
	return h.name
}

// Done is closed once the actor's loop has exited.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Send enqueues msg, blocking while the mailbox is full. Delivery is not
// guaranteed: the message is dropped silently if the handle was closed, the
// actor has terminated, or ctx ends before space frees up.
func (h *Handle[T]) Send(ctx context.Context, msg T) {
	select {
	case <-h.closed:
		h.metrics.MessageDropped(h.name)
		return
	case <-h.done:
		h.metrics.MessageDropped(h.name)
		return
	default:
	}

	select {
	case h.mailbox <- msg:
	case <-h.closed:
		h.metrics.MessageDropped(h.name)
	case <-h.done:
		h.metrics.MessageDropped(h.name)
	case <-ctx.Done():
		h.metrics.MessageDropped(h.name)
	}
}

// Close releases the producer side of the mailbox. The actor processes
// what is already queued and then exits without running its ShutdownHook.
// Later sends are dropped. Close is idempotent.
func (h *Handle[T]) Close() {
	h.closeOnce.Do(func() {
		close(h.closed)
	})
}

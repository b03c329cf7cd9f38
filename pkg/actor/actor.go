package actor

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/kitchensink/pkg/metrics"
	"github.com/aretw0/kitchensink/pkg/shutdown"
)

// MailboxSize is the capacity of every actor mailbox. A Send into a full
// mailbox blocks until the actor consumes a message.
const MailboxSize = 8

// DefaultShutdownTimeout bounds a ShutdownHook.
const DefaultShutdownTimeout = 10 * time.Second

// Actor consumes messages of type T from its mailbox.
type Actor[T any] interface {
	// HandleMessage processes one message. ctx is the coordinator's
	// cancellation signal; long handlers should watch it.
	HandleMessage(ctx context.Context, msg T)

	// Mailbox exposes the consuming end of the actor's queue.
	Mailbox() <-chan T
}

// ShutdownHook is implemented by actors that need cleanup when the
// coordinator cancels them. Actors without it simply stop.
type ShutdownHook interface {
	Shutdown(ctx context.Context) error
}

// Factory builds an actor around its mailbox. self is the actor's own
// handle, so the actor can send messages to itself.
type Factory[T any] func(mailbox <-chan T, self *Handle[T]) Actor[T]

// Base stores the mailbox and implements Actor.Mailbox. Embed it.
type Base[T any] struct {
	mailbox <-chan T
}

// NewBase wraps a mailbox handed to a Factory.
func NewBase[T any](mailbox <-chan T) Base[T] {
	return Base[T]{mailbox: mailbox}
}

// Mailbox implements Actor.
func (b Base[T]) Mailbox() <-chan T {
	return b.mailbox
}

type options struct {
	logger          *slog.Logger
	metrics         *metrics.Metrics
	shutdownTimeout time.Duration
}

// Option configures a spawned actor.
type Option func(*options)

// WithLogger overrides the coordinator's logger for this actor.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics overrides the coordinator's metrics for this actor.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithShutdownTimeout sets the deadline given to the ShutdownHook.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}

// Spawn creates the actor's mailbox, builds the actor with factory, starts
// its loop under coord's cancellation signal and registers the loop with
// coord. It returns immediately.
func Spawn[T any](name string, factory Factory[T], coord *shutdown.Coordinator, opts ...Option) *Handle[T] {
	o := options{
		logger:          coord.Logger(),
		metrics:         coord.Metrics(),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := newHandle[T](name, o.metrics)
	a := factory(h.mailbox, h)

	coord.Register(shutdown.Spawn(coord.Token(), name, func(ctx context.Context) error {
		defer close(h.done)
		return supervise(ctx, a, h.closed, name, o)
	}))
	return h
}

// supervise runs the consume loop until the handle is closed and the mailbox
// drained, or until ctx is cancelled. Cancellation takes priority over
// queued messages: once it is observed nothing else is consumed.
func supervise[T any](ctx context.Context, a Actor[T], closed <-chan struct{}, name string, o options) error {
	mailbox := a.Mailbox()
	for {
		if ctx.Err() != nil {
			return stop(ctx, name, a, o)
		}

		select {
		case <-ctx.Done():
			return stop(ctx, name, a, o)
		case msg := <-mailbox:
			if !deliver(ctx, a, msg, name, o) {
				return stop(ctx, name, a, o)
			}
		case <-closed:
			return drain(ctx, a, name, o)
		}
	}
}

// drain consumes whatever is left after the handle was closed.
func drain[T any](ctx context.Context, a Actor[T], name string, o options) error {
	mailbox := a.Mailbox()
	for {
		if ctx.Err() != nil {
			return stop(ctx, name, a, o)
		}
		select {
		case msg := <-mailbox:
			if !deliver(ctx, a, msg, name, o) {
				return stop(ctx, name, a, o)
			}
		default:
			o.logger.Debug("actor mailbox drained", "actor", name)
			return nil
		}
	}
}

// deliver hands msg to the actor unless cancellation raced the receive.
func deliver[T any](ctx context.Context, a Actor[T], msg T, name string, o options) bool {
	if ctx.Err() != nil {
		o.metrics.MessageDropped(name)
		return false
	}
	a.HandleMessage(ctx, msg)
	o.metrics.MessageHandled(name)
	return true
}

// stop runs the actor's ShutdownHook, if any. Its failure is logged only.
func stop[T any](ctx context.Context, name string, a Actor[T], o options) error {
	hook, ok := a.(ShutdownHook)
	if !ok {
		return nil
	}

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.shutdownTimeout)
	defer cancel()

	err := hook.Shutdown(hctx)
	o.metrics.ActorShutdown(name, err)
	if err != nil {
		o.logger.Error("graceful shutdown failed for actor", "actor", name, "err", err)
	}
	return nil
}

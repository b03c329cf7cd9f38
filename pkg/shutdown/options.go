package shutdown

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/kitchensink/pkg/metrics"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithMetrics records task outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithTimeout bounds how long Wait waits for registered tasks once
// shutdown has been triggered. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = d
	}
}

// WithSignals replaces the OS signals that trigger shutdown.
func WithSignals(sigs ...os.Signal) Option {
	return func(c *Coordinator) {
		c.signals = sigs
	}
}

// WithParent derives the shared cancellation signal from ctx, so cancelling
// ctx also triggers shutdown.
func WithParent(ctx context.Context) Option {
	return func(c *Coordinator) {
		c.parent = ctx
	}
}

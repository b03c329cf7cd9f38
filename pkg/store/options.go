package store

import (
	"log/slog"

	"github.com/aretw0/kitchensink/pkg/metrics"
	"github.com/aretw0/kitchensink/pkg/retry"
)

type options struct {
	logger            *slog.Logger
	metrics           *metrics.Metrics
	reseedOnReadError bool
}

// Option configures a Store.
type Option func(*options)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records writes and refreshes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithReseedOnReadError makes construction reseed the store when its file
// exists but cannot be read (permissions, I/O errors). By default only a
// missing file triggers seeding and other read errors are returned.
func WithReseedOnReadError(enabled bool) Option {
	return func(o *options) {
		o.reseedOnReadError = enabled
	}
}

type refreshOptions struct {
	name    string
	backoff retry.Factory
}

// RefreshOption configures ScheduleUpdates.
type RefreshOption func(*refreshOptions)

// WithBackoff sets the retry policy applied within one refresh. A nil
// factory disables retries: a failure waits for the next interval.
func WithBackoff(f retry.Factory) RefreshOption {
	return func(o *refreshOptions) {
		o.backoff = f
	}
}

// WithTaskName names the refresh task registered with the coordinator.
func WithTaskName(name string) RefreshOption {
	return func(o *refreshOptions) {
		o.name = name
	}
}

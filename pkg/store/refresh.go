package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/kitchensink/pkg/retry"
	"github.com/aretw0/kitchensink/pkg/shutdown"
)

// ScheduleUpdates starts a task, registered with coord, that waits every
// interval, fetches a new value and writes it. A failed refresh is retried
// according to the backoff (by default a few exponential retries capped at
// the interval); if it still fails it is logged and the loop waits for the
// next interval. The task returns when coord's cancellation signal fires.
func (s *Store[T]) ScheduleUpdates(coord *shutdown.Coordinator, f Fetcher[T], every time.Duration, opts ...RefreshOption) *shutdown.Task {
	o := refreshOptions{
		name:    "store-refresh:" + s.path,
		backoff: defaultBackoff(every),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return coord.Go(o.name, func(ctx context.Context) error {
		s.logger.Info("scheduled store updates started", "path", s.path, "interval", every)

		timer := time.NewTimer(every)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduled store updates stopped", "path", s.path)
				return nil
			case <-timer.C:
			}

			s.refresh(ctx, f, o.backoff)
			timer.Reset(every)
		}
	})
}

func defaultBackoff(every time.Duration) retry.Factory {
	return func() retry.Iterator {
		return &retry.ExponentialBackoff{
			Limited:    retry.Limited{Delay: min(time.Second, every), Retries: 3},
			Multiplier: 2,
			MaxDelay:   every,
		}
	}
}

// refresh runs one fetch-and-write cycle with retries.
func (s *Store[T]) refresh(ctx context.Context, f Fetcher[T], backoff retry.Factory) {
	start := time.Now()
	attempt := 0

	err := retry.Retry(ctx, backoff, func() error {
		attempt++
		v, err := f.Fetch(ctx, s)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		return s.Write(v)
	}, func(err error, delay time.Duration) {
		s.logger.Warn("store refresh failed, retrying",
			"path", s.path,
			"attempt", attempt,
			"retry_in", delay,
			"err", err,
		)
	})

	s.metrics.StoreRefresh(s.path, time.Since(start), err)

	switch {
	case err == nil:
		s.logger.Debug("store refreshed", "path", s.path, "attempts", attempt)
	case ctx.Err() != nil:
		s.logger.Debug("store refresh interrupted by shutdown", "path", s.path)
	default:
		s.logger.Error("store refresh failed, waiting for next interval", "path", s.path, "attempts", attempt, "err", err)
	}
}

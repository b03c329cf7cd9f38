// Package retry runs an operation repeatedly, spacing attempts according to
// an Iterator.
package retry

import (
	"context"
	"time"
)

// Stop is returned by an Iterator to end the retry loop.
const Stop time.Duration = -1

// Iterator decides how long to wait before the next attempt.
type Iterator interface {
	// Next returns the delay before the next attempt, or Stop.
	// err is the error returned by the last attempt.
	Next(ctx context.Context, err error) time.Duration
}

// Factory produces a fresh Iterator for each Retry call.
type Factory func() Iterator

// Callback is notified of every failed attempt that will be retried.
type Callback func(err error, delay time.Duration)

// Retry calls fn until it succeeds, the iterator stops, or ctx is done.
// It returns the last error from fn, or ctx.Err() if ctx ended during a wait.
func Retry(ctx context.Context, f Factory, fn func() error, cb Callback) error {
	var it Iterator
	if f != nil {
		it = f()
	}

	for {
		err := fn()
		if err == nil {
			return nil
		}
		if it == nil {
			return err
		}

		delay := it.Next(ctx, err)
		if delay == Stop {
			return err
		}
		if cb != nil {
			cb(err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

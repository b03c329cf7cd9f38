package retry

import (
	"context"
	"time"
)

// Limited retries a fixed number of times with a constant delay.
type Limited struct {
	// Delay between attempts.
	Delay time.Duration
	// Retries is the maximum number of retries. Zero means no retries.
	Retries int
	// MaxTotal, if positive, stops retrying once this much time has passed
	// since the first call to Next.
	MaxTotal time.Duration

	attempts int
	started  time.Time
}

var _ Iterator = (*Limited)(nil)

// Next implements Iterator.
func (l *Limited) Next(ctx context.Context, _ error) time.Duration {
	if ctx.Err() != nil || l.attempts >= l.Retries {
		return Stop
	}
	now := time.Now()
	if l.started.IsZero() {
		l.started = now
	}
	if l.MaxTotal > 0 && now.Sub(l.started) >= l.MaxTotal {
		return Stop
	}
	l.attempts++
	return l.Delay
}

// ExponentialBackoff is a Limited iterator whose delay grows by Multiplier
// after each attempt, capped at MaxDelay.
type ExponentialBackoff struct {
	Limited

	// Multiplier applied to the delay after each retry. Values <= 1 mean 2.
	Multiplier float64
	// MaxDelay caps the delay. Zero means no cap.
	MaxDelay time.Duration

	next time.Duration
}

var _ Iterator = (*ExponentialBackoff)(nil)

// Next implements Iterator.
func (e *ExponentialBackoff) Next(ctx context.Context, err error) time.Duration {
	if e.Limited.Next(ctx, err) == Stop {
		return Stop
	}

	delay := e.next
	if delay <= 0 {
		delay = e.Delay
	}
	if e.MaxDelay > 0 && delay > e.MaxDelay {
		delay = e.MaxDelay
	}

	mult := e.Multiplier
	if mult <= 1 {
		mult = 2
	}
	e.next = time.Duration(float64(delay) * mult)
	return delay
}

// Default is the backoff used when callers do not supply one: up to 3
// retries starting at one second, doubling, capped at 30 seconds.
func Default() Iterator {
	return &ExponentialBackoff{
		Limited:    Limited{Delay: time.Second, Retries: 3},
		Multiplier: 2,
		MaxDelay:   30 * time.Second,
	}
}

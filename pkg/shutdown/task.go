package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTaskPanicked wraps the value recovered from a panicking task.
var ErrTaskPanicked = errors.New("task panicked")

// Task is a handle to a function running in its own goroutine.
type Task struct {
	name    string
	done    chan struct{}
	started time.Time

	mu       sync.Mutex
	err      error
	finished time.Time
}

// Spawn runs fn in a new goroutine with ctx and returns its handle.
// A panic inside fn is recovered and reported through Err.
func Spawn(ctx context.Context, name string, fn func(ctx context.Context) error) *Task {
	t := &Task{
		name:    name,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	go t.run(ctx, fn)
	return t
}

func (t *Task) run(ctx context.Context, fn func(ctx context.Context) error) {
	defer close(t.done)
	defer func() {
		r := recover()
		t.mu.Lock()
		defer t.mu.Unlock()
		if r != nil {
			t.err = fmt.Errorf("%w: %s: %v", ErrTaskPanicked, t.name, r)
		}
		t.finished = time.Now()
	}()

	err := fn(ctx)

	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Name returns the name given at spawn time.
func (t *Task) Name() string { return t.name }

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's error. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the task returns and yields its error.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Duration is the task's run time, or the time elapsed so far if it is still running.
func (t *Task) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished.IsZero() {
		return time.Since(t.started)
	}
	return t.finished.Sub(t.started)
}

// failure filters out the error a task returns when it stops because of cancellation.
func failure(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

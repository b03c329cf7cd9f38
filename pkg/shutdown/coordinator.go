package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/kitchensink/internal/logging"
	"github.com/aretw0/kitchensink/pkg/metrics"
)

var (
	// ErrShutdownTimeout is returned by Wait when registered tasks outlive the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

	// ErrAlreadyWaiting is returned when Wait is called more than once.
	ErrAlreadyWaiting = errors.New("shutdown wait already started")
)

// Coordinator owns the process-wide cancellation signal and the registry of
// tasks that must finish before the process exits.
type Coordinator struct {
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	signals []os.Signal

	mu      sync.Mutex
	tasks   []*Task
	waiting bool
}

// New creates a coordinator with a fresh cancellation signal and no tasks.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		parent:  context.Background(),
		logger:  logging.NewNop(),
		signals: defaultSignals,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.parent)
	return c
}

// Token returns the shared cancellation signal. Every task that must observe
// shutdown should receive it (or a context derived from it).
func (c *Coordinator) Token() context.Context {
	return c.ctx
}

// Cancel triggers shutdown programmatically. It is safe to call many times.
func (c *Coordinator) Cancel() {
	c.cancel()
}

// Logger returns the coordinator's logger, for components spawned under it.
func (c *Coordinator) Logger() *slog.Logger {
	return c.logger
}

// Metrics returns the coordinator's metrics (possibly nil).
func (c *Coordinator) Metrics() *metrics.Metrics {
	return c.metrics
}

// Register adds a task to the registry. Tasks registered after Wait has
// started are not awaited; a warning is logged instead.
func (c *Coordinator) Register(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.waiting {
		c.logger.Warn("task registered after shutdown wait started, it will not be awaited", "task", t.Name())
		return
	}
	c.tasks = append(c.tasks, t)

	c.metrics.TaskStarted()
	go func() {
		<-t.Done()
		c.metrics.TaskFinished(failure(t.Err()))
	}()
}

// Go spawns fn under the shared cancellation signal and registers it.
func (c *Coordinator) Go(name string, fn func(ctx context.Context) error) *Task {
	t := Spawn(c.ctx, name, fn)
	c.Register(t)
	return t
}

// Wait blocks until an OS signal arrives or the shared signal is cancelled,
// then cancels it and waits for every registered task. Task failures are
// logged and reported in the Result; they never interrupt the wait.
// With a timeout configured, Wait gives up on stragglers and returns
// ErrShutdownTimeout alongside a partial Result.
func (c *Coordinator) Wait() (*Result, error) {
	c.mu.Lock()
	if c.waiting {
		c.mu.Unlock()
		return nil, ErrAlreadyWaiting
	}
	c.waiting = true
	c.mu.Unlock()

	sigs := listen(c.signals...)
	defer sigs.Stop()

	c.logger.Info("waiting for shutdown signals")

	var trigger string
	select {
	case sig := <-sigs.C():
		trigger = sig.String()
		c.logger.Info("received signal", "signal", trigger)
	case <-c.ctx.Done():
		trigger = TriggerProgrammatic
		c.logger.Info("shutdown requested programmatically")
	}

	c.logger.Info("starting shutdown sequence")
	c.cancel()

	c.mu.Lock()
	tasks := c.tasks
	c.tasks = nil
	c.mu.Unlock()

	res, err := c.join(tasks)
	res.Trigger = trigger
	if err != nil {
		return res, err
	}
	c.logger.Info("shutdown sequence complete", "tasks", len(tasks), "duration", res.Duration)
	return res, nil
}

// join waits for tasks, honouring the configured timeout.
func (c *Coordinator) join(tasks []*Task) (*Result, error) {
	start := time.Now()

	var mu sync.Mutex
	results := make([]TaskResult, len(tasks))
	finished := make([]bool, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			<-t.Done()
			tr := TaskResult{Name: t.Name(), Duration: t.Duration(), Err: failure(t.Err())}
			if tr.Err != nil {
				c.logger.Error("task failed during shutdown", "task", tr.Name, "err", tr.Err)
			}
			mu.Lock()
			results[i] = tr
			finished[i] = true
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	var expired <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-done:
		return &Result{Duration: time.Since(start), Tasks: results}, nil
	case <-expired:
	}

	mu.Lock()
	defer mu.Unlock()
	res := &Result{Duration: time.Since(start), Tasks: make([]TaskResult, len(tasks))}
	for i, t := range tasks {
		if finished[i] {
			res.Tasks[i] = results[i]
			continue
		}
		res.Tasks[i] = TaskResult{Name: t.Name(), Duration: t.Duration(), Err: ErrShutdownTimeout}
		res.Pending = append(res.Pending, t.Name())
	}
	c.logger.Error("shutdown timed out", "timeout", c.timeout, "pending", res.Pending)
	return res, ErrShutdownTimeout
}

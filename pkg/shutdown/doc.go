/*
Package shutdown coordinates the graceful termination of a long-running process.

A Coordinator owns one cancellation signal (a context.Context) for the whole
process and a registry of background tasks. Tasks are started with Go (or
started with Spawn and handed over with Register) and receive the shared
context; they are expected to return once it is cancelled.

Wait blocks until an OS signal arrives (SIGINT, SIGTERM, Ctrl+C) or Cancel is
called, then cancels the shared context and waits for every registered task.
A failing or panicking task is logged and reported in the Result but never
stops the wait for the others.

# Usage

	coord := shutdown.New(
		shutdown.WithLogger(logger),
		shutdown.WithTimeout(30*time.Second),
	)

	coord.Go("poller", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	res, err := coord.Wait()
	if errors.Is(err, shutdown.ErrShutdownTimeout) {
		os.Exit(1)
	}
*/
package shutdown

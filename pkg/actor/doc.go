/*
Package actor supervises message-processing loops ("actors") under a
shutdown.Coordinator.

Each actor owns a bounded mailbox of MailboxSize messages and is consumed by
exactly one goroutine. Producers hold a *Handle and call Send, which blocks
while the mailbox is full. When the coordinator's cancellation signal fires,
the actor stops consuming (messages still queued are discarded) and its
optional ShutdownHook runs. Closing the handle instead lets the actor drain
its mailbox and exit normally.

# Usage

	type counter struct {
		actor.Base[int]
		total int
	}

	func (c *counter) HandleMessage(ctx context.Context, n int) { c.total += n }

	func (c *counter) Shutdown(ctx context.Context) error {
		log.Printf("total=%d", c.total)
		return nil
	}

	h := actor.Spawn("counter", func(mb <-chan int, self *actor.Handle[int]) actor.Actor[int] {
		return &counter{Base: actor.NewBase(mb)}
	}, coord)

	h.Send(ctx, 1)
*/
package actor

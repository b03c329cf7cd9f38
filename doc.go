/*
Package kitchensink is a small concurrency toolkit for long-running Go services.

It bundles three pieces that are usually rewritten in every daemon:

  - A shutdown coordinator (pkg/shutdown) that owns a cancellation signal,
    listens for OS interrupts and waits for every registered task, with an
    optional deadline.
  - Supervised actors (pkg/actor) with a bounded mailbox of MailboxSize
    messages, a cancellation-first receive loop and an optional shutdown hook.
  - A disk-backed store (pkg/store) holding one value of any type, written
    atomically through a pluggable codec and optionally refreshed on a
    schedule from a Fetcher.

# Usage

A coordinator is created first and handed to everything that runs in the
background:

	package main

	import (
		"log"
		"time"

		"github.com/aretw0/kitchensink/pkg/codec"
		"github.com/aretw0/kitchensink/pkg/shutdown"
		"github.com/aretw0/kitchensink/pkg/store"
	)

	type Settings struct {
		Greeting string `json:"greeting"`
	}

	func main() {
		coord := shutdown.New(shutdown.WithTimeout(10 * time.Second))

		s, err := store.NewWithDefault[Settings]("settings.json", codec.JSON[Settings]{})
		if err != nil {
			log.Fatal(err)
		}
		s.ScheduleUpdates(coord, myFetcher{}, time.Minute)

		if _, err := coord.Wait(); err != nil {
			log.Fatal(err)
		}
	}

The cmd/kitchen binary wires all of it together with a Redis source, an
admin HTTP server and Prometheus metrics.
*/
package kitchensink

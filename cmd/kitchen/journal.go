package main

import (
	"context"
	"log/slog"

	"github.com/aretw0/kitchensink/pkg/actor"
)

// journal logs every catalog the store accepts.
type journal struct {
	actor.Base[Catalog]
	logger *slog.Logger

	updates int
	last    int
}

func newJournal(logger *slog.Logger) actor.Factory[Catalog] {
	return func(mailbox <-chan Catalog, _ *actor.Handle[Catalog]) actor.Actor[Catalog] {
		return &journal{
			Base:   actor.NewBase(mailbox),
			logger: logger.With("actor", "journal"),
		}
	}
}

func (j *journal) HandleMessage(ctx context.Context, c Catalog) {
	if j.updates > 0 && c.Version < j.last {
		j.logger.Warn("catalog version went backwards", "from", j.last, "to", c.Version)
	}
	j.updates++
	j.last = c.Version
	j.logger.Info("catalog updated", "version", c.Version, "entries", len(c.Entries))
}

func (j *journal) Shutdown(ctx context.Context) error {
	j.logger.Info("journal closed", "updates", j.updates, "last_version", j.last)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/kitchensink"
	"github.com/aretw0/kitchensink/internal/admin"
	"github.com/aretw0/kitchensink/internal/config"
	"github.com/aretw0/kitchensink/internal/logging"
	"github.com/aretw0/kitchensink/pkg/actor"
	"github.com/aretw0/kitchensink/pkg/adapters/redis"
	"github.com/aretw0/kitchensink/pkg/codec"
	"github.com/aretw0/kitchensink/pkg/metrics"
	"github.com/aretw0/kitchensink/pkg/shutdown"
	"github.com/aretw0/kitchensink/pkg/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the catalog daemon until interrupted",
	Long: `Opens the catalog store, refreshes it from Redis when configured, serves the
admin endpoints and waits for SIGINT or SIGTERM. Exits with status 1 when
the shutdown does not complete within shutdown.timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("admin"); addr != "" {
			cfg.Admin.Addr = addr
		}
		return runDaemon(cmd.Context(), cfg, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("admin", "", "Admin server address (overrides admin.addr)")
}

// runDaemon runs until a signal arrives or ctx is cancelled.
func runDaemon(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return err
	}
	logs := logging.NewController(level, format, logOut)
	logger := logs.Logger()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	coord := shutdown.New(
		shutdown.WithLogger(logger),
		shutdown.WithMetrics(m),
		shutdown.WithTimeout(cfg.Shutdown.Timeout),
		shutdown.WithParent(ctx),
	)
	// Releases the coordinator when setup fails before Wait.
	defer coord.Cancel()

	c, err := storeCodec(cfg.Store)
	if err != nil {
		return err
	}
	storeOpts := []store.Option{
		store.WithLogger(logger),
		store.WithMetrics(m),
		store.WithReseedOnReadError(cfg.Store.ReseedOnReadError),
	}

	var (
		source store.Fetcher[Catalog]
		s      *store.Store[Catalog]
	)
	if cfg.Redis.Addr != "" {
		// Redis holds the plain encoding even when the file is sealed.
		var wire codec.Codec[Catalog]
		if wire, err = codec.ByName[Catalog](cfg.Store.Codec); err != nil {
			return err
		}
		rf := redis.New[Catalog](cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key, wire, redis.WithPrefix(cfg.Redis.Prefix))
		defer rf.Close()
		source = rf
		s, err = store.NewWithFetcher[Catalog](coord.Token(), cfg.Store.Path, c, rf, storeOpts...)
	} else {
		s, err = store.NewWithDefault[Catalog](cfg.Store.Path, c, storeOpts...)
	}
	if err != nil {
		return err
	}
	logger.Info("catalog store open", "path", s.Path(), "version", s.Snapshot().Version)

	journal := actor.Spawn("journal", newJournal(logger), coord)
	s.OnWrite(func(v Catalog) {
		journal.Send(coord.Token(), v)
	})

	switch {
	case source == nil:
		logger.Info("no redis source configured, catalog will not be refreshed")
	case cfg.Store.RefreshInterval <= 0:
		logger.Info("store.refresh_interval is zero, catalog will not be refreshed")
	default:
		s.ScheduleUpdates(coord, source, cfg.Store.RefreshInterval, store.WithTaskName("catalog-refresh"))
	}

	if cfg.Admin.Addr != "" {
		ln, err := net.Listen("tcp", cfg.Admin.Addr)
		if err != nil {
			return fmt.Errorf("admin server: %w", err)
		}
		handler := admin.NewHandler(admin.Config{
			Version:  kitchensink.Version,
			Logs:     logs,
			Gatherer: reg,
			Snapshot: func() any { return s.Snapshot() },
		})
		coord.Go("admin", func(ctx context.Context) error {
			return admin.Serve(ctx, ln, handler, logger)
		})
	}

	res, err := coord.Wait()
	if errors.Is(err, shutdown.ErrShutdownTimeout) {
		return fmt.Errorf("shutdown timed out after %v, still running: %s", cfg.Shutdown.Timeout, strings.Join(res.Pending, ", "))
	}
	if err != nil {
		return err
	}
	if failed := res.FailedTasks(); len(failed) > 0 {
		return fmt.Errorf("tasks failed during shutdown: %s", strings.Join(failed, ", "))
	}
	logger.Info("kitchen stopped", "trigger", res.Trigger, "duration", res.Duration)
	return nil
}

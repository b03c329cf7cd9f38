// Package admin exposes the operational HTTP surface of the kitchen daemon:
// health, Prometheus metrics, the runtime log level and a store snapshot.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/kitchensink/internal/logging"
)

// ShutdownGrace bounds how long in-flight requests may run once the server
// is asked to stop.
const ShutdownGrace = 5 * time.Second

// Config lists what the admin endpoints report on. Nil fields disable the
// matching endpoint.
type Config struct {
	Version  string
	Logs     *logging.Controller
	Gatherer prometheus.Gatherer
	// Snapshot returns the current store value for GET /store.
	Snapshot func() any
}

// NewHandler builds the admin router.
func NewHandler(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": strings.TrimSpace(cfg.Version),
		})
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.Logs != nil {
		r.Get("/loglevel", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"level": cfg.Logs.Level().String()})
		})
		r.Put("/loglevel", func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, 64))
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if err := cfg.Logs.SetLevel(string(body)); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"level": cfg.Logs.Level().String()})
		})
	}

	if cfg.Snapshot != nil {
		r.Get("/store", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, cfg.Snapshot())
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Serve runs handler on ln until ctx is cancelled, then shuts the server
// down gracefully. It fits a shutdown.Coordinator task.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("admin server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin server: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownGrace)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("admin server did not stop gracefully", "grace", ShutdownGrace, "err", err)
			_ = srv.Close()
		}
		logger.Info("admin server stopped")
		return nil
	}
}

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects the slog handler used by a Controller.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewController(level, FormatText, os.Stderr).Logger()
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Controller owns the logger of a process together with its level, so the
// level can be changed while the process runs. It is handed to whatever needs
// to change verbosity (e.g. the admin endpoint) instead of living in a global.
type Controller struct {
	mu     sync.Mutex
	level  *slog.LevelVar
	logger *slog.Logger
}

// NewController builds a logger writing to w with the given format.
// A nil writer means Stderr.
func NewController(level slog.Level, format Format, w io.Writer) *Controller {
	if w == nil {
		w = os.Stderr
	}
	lv := new(slog.LevelVar)
	lv.Set(level)

	opts := &slog.HandlerOptions{
		Level: lv,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return &Controller{level: lv, logger: slog.New(h)}
}

// Logger returns the controlled logger.
func (c *Controller) Logger() *slog.Logger {
	return c.logger
}

// Level reports the current minimum level.
func (c *Controller) Level() slog.Level {
	return c.level.Level()
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies it.
func (c *Controller) SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.level.Level()
	c.level.Set(lvl)
	if old != lvl {
		c.logger.Info("log level changed", "from", old.String(), "to", lvl.String())
	}
	return nil
}

// ParseLevel converts a textual level into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// ParseFormat validates a handler format name. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid log format %q", name)
	}
}

// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel overrides the configured log level.
const EnvLevel = "RELIC_LOG_LEVEL"

// Options controls handler construction.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Writer io.Writer
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// New creates a logger. An empty level means warn; $RELIC_LOG_LEVEL wins
// over opts.Level when set.
func New(opts Options) (*slog.Logger, error) {
	name := opts.Level
	if env := os.Getenv(EnvLevel); env != "" {
		name = env
	}
	if name == "" {
		name = "warn"
	}
	level, err := ParseLevel(name)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		h = slog.NewJSONHandler(w, handlerOpts)
	case "", "text":
		h = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", opts.Format)
	}
	return slog.New(h), nil
}

// Setup creates a logger and installs it as the slog default.
func Setup(opts Options) (*slog.Logger, error) {
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

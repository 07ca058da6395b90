// Package logging builds the structured logger used by the pantry CLI and
// storage layer.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log destination and verbosity.
type Config struct {
	File      string
	Level     string
	MaxSizeMB int
	MaxFiles  int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a JSON logger with sensitive attributes redacted. Output goes
// to a rotating file when cfg.File is set and to stderr otherwise. The
// returned closer releases the file and must be closed by the caller.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		rw, err := NewRotatingWriter(RotationConfig{
			File:      cfg.File,
			MaxSizeMB: cfg.MaxSizeMB,
			MaxFiles:  cfg.MaxFiles,
		})
		if err != nil {
			return nil, nil, err
		}
		w, closer = rw, rw
	}

	return NewWithWriter(w, level), closer, nil
}

// NewWithWriter returns a redacting JSON logger writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(base))
}

// ParseLevel maps a config level name to a slog level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

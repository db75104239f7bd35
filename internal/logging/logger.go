// Package logging configures runtime JSONL logging output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EnvLevel overrides the runtime log level (debug, info, warn, error).
const EnvLevel = "VOCAHIRE_LOG_LEVEL"

// Runtime bundles the configured logger and its open file handle lifecycle.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

// Close flushes and closes the logger output sink.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New builds a JSONL logger rooted at the resolved state path.
func New() (Runtime, error) {
	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, err
	}

	logger := slog.New(slog.NewJSONHandler(f, handlerOptions()))
	return Runtime{Logger: logger, Path: path, closer: f}, nil
}

// NewOrStderr falls back to a stderr JSON logger when the state file cannot
// be opened. The returned error is the reason for the fallback, if any.
func NewOrStderr(stderr io.Writer) (Runtime, error) {
	runtime, err := New()
	if err == nil {
		return runtime, nil
	}
	logger := slog.New(slog.NewJSONHandler(stderr, handlerOptions()))
	return Runtime{Logger: logger}, err
}

func handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: parseLevel(os.Getenv(EnvLevel))}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveLogPath selects XDG_STATE_HOME when available, otherwise ~/.local/state.
func resolveLogPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "vocahire", "log.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "vocahire", "log.jsonl"), nil
}

// Package logger builds the structured logger used across cspledger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~jakintosh/cspledger/internal/config"
	"github.com/spf13/afero"
)

// DefaultFile is the log file name used inside the data directory.
const DefaultFile = "cspledger.log"

// NewLogger creates and configures a new slog.Logger writing JSON lines to w.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := Level(cfg.Logging.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts)).With("app", cfg.Application.Name)
	logger.Debug("logger initialized", "level", level, "env", cfg.Application.Env)

	return logger
}

// Level maps a configured level name onto slog, defaulting to info.
func Level(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Open returns the writer logs should go to, opening files on fs. "-" means stderr.
// An empty Logging.File means cspledger.log inside the data directory; the terminal
// UI owns stdout so logs never go there. The returned close func is always non-nil.
func Open(fs afero.Fs, cfg *config.Config) (io.Writer, func() error, error) {
	path := cfg.Logging.File
	switch path {
	case "-":
		return os.Stderr, func() error { return nil }, nil
	case "":
		path = filepath.Join(cfg.Storage.DataDir, DefaultFile)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}

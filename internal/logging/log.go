// Package logging provides JSON-lines structured logging for histmcp.
//
// Logs always go to stderr by default: stdout carries the MCP stdio
// transport and must stay clean.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/runger/histmcp/internal/history"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
	}
}

// New creates a new JSON-lines structured logger. Lines look like:
//
//	{"ts":"2024-01-15T10:30:00Z","level":"INFO","msg":"history loaded","records":1204}
//
// Log levels:
//   - debug: per-request detail (enabled via HISTMCP_DEBUG=1)
//   - info: startup, reload, shutdown
//   - warn: missing history file, failed reload
//   - error: failures that stop the server
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// ParseLevel maps a config level name to a slog level. Unknown names map
// to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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

// StartupInfo holds information to log when the server starts.
type StartupInfo struct {
	Version     string
	ConfigPath  string
	HistoryPath string
	Timestamps  history.TimestampMode
	PID         int
}

// LogStartup logs server startup information.
func LogStartup(logger *slog.Logger, info StartupInfo) {
	logger.Info("server started",
		"version", info.Version,
		"config_path", info.ConfigPath,
		"history_path", info.HistoryPath,
		"timestamps", string(info.Timestamps),
		"pid", info.PID,
	)
}

// LogHistoryLoaded logs the outcome of a history load. A missing file is a
// warning; any other error is logged at error level.
func LogHistoryLoaded(logger *slog.Logger, store *history.Store, err error) {
	stats := store.Stats()
	switch {
	case err == nil:
		logger.Info("history loaded",
			"path", store.Path(),
			"records", store.Len(),
			"lines", stats.Lines,
			"skipped", stats.Blank+stats.Timestamps,
			"comments", stats.Comments,
			"load_id", store.LoadID(),
		)
	case errors.Is(err, history.ErrMissingFile):
		logger.Warn("history file not found; serving empty history",
			"path", store.Path(),
			"load_id", store.LoadID(),
		)
	default:
		logger.Error("history load failed; serving empty history",
			"path", store.Path(),
			"error", err,
		)
	}
}

// LogReloadFailed logs a reload that kept the previous store.
func LogReloadFailed(logger *slog.Logger, current *history.Store, err error) {
	logger.Warn("history reload failed; keeping previous load",
		"path", current.Path(),
		"load_id", current.LoadID(),
		"error", err,
	)
}

// LogShutdown logs server shutdown.
func LogShutdown(logger *slog.Logger, reason string) {
	logger.Info("server shutting down", "reason", reason)
}

// LogSQLiteError logs SQLite errors.
func LogSQLiteError(logger *slog.Logger, operation string, err error) {
	logger.Error("sqlite error", "operation", operation, "error", err)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/config"
	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/logging"
	"github.com/runger/histmcp/internal/redact"
)

// stdinFile is the --histfile value that reads history from stdin.
const stdinFile = "-"

// settings is the resolved configuration for one command invocation.
type settings struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
}

// loadSettings reads the config file and layers the global flags on top.
// Flag values go through Config.Set so they are validated like file values.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	path := configFile
	if path == "" {
		path = config.FilePath()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag  string
		key   string
		value string
	}{
		{"histfile", "history.file", histFile},
		{"timestamps", "history.timestamps", timestamps},
		{"log-level", "log.level", logLevel},
		{"color", "display.color", colorMode},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := cfg.Set(o.key, o.value); err != nil {
			return nil, fmt.Errorf("--%s: %w", o.flag, err)
		}
	}
	if cmd.Flags().Changed("redact") {
		cfg.Privacy.RedactSecrets = redactFlag
	}

	logger := logging.New(&logging.Config{
		Output: cmd.ErrOrStderr(),
		Level:  logging.ParseLevel(cfg.Log.Level),
	})

	return &settings{cfg: cfg, configPath: path, logger: logger}, nil
}

// openSource loads the configured history. The returned source is usable
// when err wraps history.ErrMissingFile; it then serves an empty store.
func (s *settings) openSource(cmd *cobra.Command) (*history.Source, error) {
	opts := []history.LoadOption{history.WithTimestampMode(s.cfg.TimestampMode())}

	if s.cfg.History.File == stdinFile {
		store, err := history.Parse(cmd.InOrStdin(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to read history from stdin: %w", err)
		}
		return history.StaticSource(store), nil
	}

	return history.NewSource(s.cfg.History.File, opts...)
}

// redactor returns the secret masker, or nil when redaction is off.
func (s *settings) redactor() *redact.Redactor {
	if !s.cfg.Privacy.RedactSecrets {
		return nil
	}
	return redact.New()
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

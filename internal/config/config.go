package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/histmcp/internal/history"
)

// Config represents the histmcp configuration.
type Config struct {
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
	Display DisplayConfig `yaml:"display"`
	Privacy PrivacyConfig `yaml:"privacy"`
}

// HistoryConfig selects the history file and how it is interpreted.
type HistoryConfig struct {
	File       string `yaml:"file"`       // History file path; "~" is expanded
	Timestamps string `yaml:"timestamps"` // load|parsed
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DisplayConfig holds settings for terminal output.
type DisplayConfig struct {
	Color    string `yaml:"color"`     // auto|always|never
	MaxWidth int    `yaml:"max_width"` // Truncate commands to this many cells (0 = terminal width)
}

// PrivacyConfig controls what leaves the process.
type PrivacyConfig struct {
	RedactSecrets bool `yaml:"redact_secrets"` // Mask tokens and passwords in served commands
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			File:       history.DefaultFile,
			Timestamps: string(history.TimestampsLoad),
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			Color:    "auto",
			MaxWidth: 0,
		},
	}
}

// FilePath returns the configuration file in effect: HISTMCP_CONFIG when set,
// otherwise the XDG default.
func FilePath() string {
	if v := os.Getenv("HISTMCP_CONFIG"); v != "" {
		return v
	}
	return DefaultPaths().ConfigFile()
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ReadFile reads the file over the defaults without applying environment
// overrides, so the result can be edited and saved back. A missing file
// yields the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // G304: config path chosen by the user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: config is not secret
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key,
// for example "history.file" or "log.level".
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "history":
		return c.getHistoryField(field)
	case "log":
		return c.getLogField(field)
	case "display":
		return c.getDisplayField(field)
	case "privacy":
		return c.getPrivacyField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "history":
		return c.setHistoryField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "display":
		return c.setDisplayField(field, value)
	case "privacy":
		return c.setPrivacyField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getHistoryField(field string) (string, error) {
	switch field {
	case "file":
		return c.History.File, nil
	case "timestamps":
		return c.History.Timestamps, nil
	default:
		return "", fmt.Errorf("unknown field: history.%s", field)
	}
}

func (c *Config) setHistoryField(field, value string) error {
	switch field {
	case "file":
		c.History.File = value
	case "timestamps":
		if _, err := history.ParseTimestampMode(value); err != nil {
			return err
		}
		c.History.Timestamps = value
	default:
		return fmt.Errorf("unknown field: history.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func (c *Config) getDisplayField(field string) (string, error) {
	switch field {
	case "color":
		return c.Display.Color, nil
	case "max_width":
		return strconv.Itoa(c.Display.MaxWidth), nil
	default:
		return "", fmt.Errorf("unknown field: display.%s", field)
	}
}

func (c *Config) setDisplayField(field, value string) error {
	switch field {
	case "color":
		if !IsValidColorMode(value) {
			return fmt.Errorf("invalid color: %s (must be auto, always, or never)", value)
		}
		c.Display.Color = value
	case "max_width":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_width: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid max_width: must be non-negative")
		}
		c.Display.MaxWidth = v
	default:
		return fmt.Errorf("unknown field: display.%s", field)
	}
	return nil
}

func (c *Config) getPrivacyField(field string) (string, error) {
	switch field {
	case "redact_secrets":
		return strconv.FormatBool(c.Privacy.RedactSecrets), nil
	default:
		return "", fmt.Errorf("unknown field: privacy.%s", field)
	}
}

func (c *Config) setPrivacyField(field, value string) error {
	switch field {
	case "redact_secrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for redact_secrets: %w", err)
		}
		c.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown field: privacy.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := history.ParseTimestampMode(c.History.Timestamps); err != nil {
		return fmt.Errorf("history.timestamps: %w", err)
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	if !IsValidColorMode(c.Display.Color) {
		return fmt.Errorf("display.color must be auto, always, or never (got: %s)", c.Display.Color)
	}

	if c.Display.MaxWidth < 0 {
		return errors.New("display.max_width must be >= 0")
	}

	return nil
}

// TimestampMode returns the configured history timestamp mode, falling back
// to load mode for unrecognized values.
func (c *Config) TimestampMode() history.TimestampMode {
	mode, err := history.ParseTimestampMode(c.History.Timestamps)
	if err != nil {
		return history.TimestampsLoad
	}
	return mode
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// IsValidColorMode reports whether mode is one of auto, always or never.
func IsValidColorMode(mode string) bool {
	switch mode {
	case "auto", "always", "never":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// HISTFILE selects the history file the same way the shell does.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("HISTFILE"); v != "" {
		c.History.File = v
	}
	if v := os.Getenv("HISTMCP_TIMESTAMPS"); v != "" {
		if _, err := history.ParseTimestampMode(v); err == nil {
			c.History.Timestamps = v
		}
	}
	if v := os.Getenv("HISTMCP_REDACT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Privacy.RedactSecrets = b
		}
	}
	if v := os.Getenv("HISTMCP_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("HISTMCP_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"history.file",
		"history.timestamps",
		"log.level",
		"display.color",
		"display.max_width",
		"privacy.redact_secrets",
	}
}

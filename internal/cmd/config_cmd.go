package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/config"
)

var configShowPath bool

var configCmd = &cobra.Command{
	Use:     "config [key] [value]",
	Short:   "Get or set configuration values",
	GroupID: groupSetup,
	Long: `Get or set histmcp configuration values.

Without arguments, lists all configuration keys.
With one argument, shows the value of that key.
With two arguments, sets the key to the value.

Configuration is stored in ~/.config/histmcp/config.yaml (XDG compliant),
or in the file named by --config or $HISTMCP_CONFIG.

Keys are in the format: section.key
Sections: history, log, display, privacy

Examples:
  histmcp config                            # List all keys
  histmcp config history.file               # Get the history file
  histmcp config history.timestamps parsed  # Keep timestamps from the file
  histmcp config privacy.redact_secrets true
  histmcp config --path                     # Print the config file path`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "Print the config file path and exit")
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.FilePath()
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := configPath()
	if configShowPath {
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	switch len(args) {
	case 0:
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return listConfig(cmd, cfg, path)
	case 1:
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return getConfig(cmd, cfg, args[0])
	default:
		// Environment overrides must not leak into the saved file.
		cfg, err := config.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return setConfig(cmd, cfg, path, args[0], args[1])
	}
}

func listConfig(cmd *cobra.Command, cfg *config.Config, path string) error {
	p := newPrinter(cmd.OutOrStdout(), cfg)
	fmt.Fprintln(p.w, p.title.Render("Configuration Keys"))
	fmt.Fprintln(p.w, strings.Repeat("-", 40))
	fmt.Fprintln(p.w)

	var failedKeys []string
	for _, key := range config.ListKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			failedKeys = append(failedKeys, key)
			continue
		}
		if value == "" {
			value = p.dim.Render("(not set)")
		}
		fmt.Fprintf(p.w, "  %s = %s\n", p.key.Render(key), value)
	}

	if len(failedKeys) > 0 {
		fmt.Fprintf(p.w, "\nWarning: Failed to retrieve keys: %s\n", strings.Join(failedKeys, ", "))
	}

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Config file: %s\n", path)
	return nil
}

func getConfig(cmd *cobra.Command, cfg *config.Config, key string) error {
	value, err := cfg.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func setConfig(cmd *cobra.Command, cfg *config.Config, path, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.SaveToFile(path); err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), cfg)
	fmt.Fprintf(p.w, "%s = %s\n", p.key.Render(key), value)
	fmt.Fprintf(p.w, "Saved to: %s\n", path)
	return nil
}

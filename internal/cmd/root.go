package cmd

import (
	"github.com/spf13/cobra"
)

const (
	groupCore  = "core"
	groupSetup = "setup"
)

// Global flags shared by every subcommand.
var (
	histFile   string
	configFile string
	logLevel   string
	timestamps string
	colorMode  string
	redactFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "histmcp",
	Short: "serve your shell history to MCP clients",
	Long: `histmcp - read-only shell history over the Model Context Protocol
  - search, list and fetch commands from ~/.bash_history
  - browse history interactively or export it to SQLite

Without a subcommand, histmcp runs the MCP server over stdio.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Core Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&histFile, "histfile", "", `History file to read ("-" reads stdin; default: history.file or $HISTFILE)`)
	pf.StringVar(&configFile, "config", "", "Config file (default: $HISTMCP_CONFIG or ~/.config/histmcp/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&timestamps, "timestamps", "", "Timestamp mode: load or parsed")
	pf.StringVar(&colorMode, "color", "", "Color output: auto, always or never")
	pf.BoolVar(&redactFlag, "redact", false, "Mask tokens and passwords in output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/mcpserver"
)

var (
	recentLimit int
	recentJSON  bool
	searchJSON  bool
	showJSON    bool
)

var recentCmd = &cobra.Command{
	Use:     "recent",
	Short:   "Show the most recent commands",
	GroupID: groupCore,
	Long: `Show the most recent commands from the history file, oldest first.

Examples:
  histmcp recent               # Last 10 commands
  histmcp recent -n 50         # Last 50 commands
  histmcp recent --json        # Same records the MCP tool returns`,
	Args: cobra.NoArgs,
	RunE: runRecent,
}

var searchCmd = &cobra.Command{
	Use:     "search [query...]",
	Short:   "Search history for a substring",
	GroupID: groupCore,
	Long: `Search the history file for commands containing the query, ignoring case.

Multiple arguments are joined with single spaces. Without a query, the 50
most recent commands are shown.

Examples:
  histmcp search docker
  histmcp search git push
  histmcp search kubectl --json`,
	RunE: runSearch,
}

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show one command by ID",
	GroupID: groupCore,
	Long: `Show the command with the given ID.

IDs are line indexes in the history file, as printed by recent and search.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", mcpserver.DefaultRecentLimit, "Maximum number of commands to show")
	recentCmd.Flags().BoolVar(&recentJSON, "json", false, "Output as JSON")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

// loadStore resolves settings and loads the history for a one-shot query.
// A missing history file is a warning: the query runs against an empty store.
func loadStore(cmd *cobra.Command) (*settings, *history.Store, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	source, err := s.openSource(cmd)
	if err != nil {
		if !errors.Is(err, history.ErrMissingFile) {
			return nil, nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	store := source.Store()
	s.logger.Debug("history loaded", "path", store.Path(), "records", store.Len(), "load_id", store.LoadID())
	return s, store, nil
}

func runRecent(cmd *cobra.Command, _ []string) error {
	s, store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	records := s.redactor().Records(store.Recent(recentLimit))
	if recentJSON {
		return writeJSON(cmd.OutOrStdout(), mcpserver.CommandsOutput{Commands: records})
	}

	p := newPrinter(cmd.OutOrStdout(), s.cfg)
	if len(records) == 0 {
		p.notice("No commands in history.")
		return nil
	}
	p.records(records)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	records := s.redactor().Records(store.Search(query))
	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), mcpserver.CommandsOutput{Commands: records})
	}

	p := newPrinter(cmd.OutOrStdout(), s.cfg)
	if len(records) == 0 {
		p.notice("No matching commands found.")
		return nil
	}
	p.records(records)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid command id %q", args[0])
	}

	s, store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	rec, ok := store.Get(id)
	if ok {
		rec = s.redactor().Record(rec)
	}

	if showJSON {
		out := mcpserver.GetCommandOutput{Found: ok}
		if ok {
			out.Command = &rec
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	}
	if !ok {
		return fmt.Errorf("command %d not found", id)
	}
	if showJSON {
		return nil
	}

	// Show prints the command verbatim so it can be copied or piped.
	fmt.Fprintln(cmd.OutOrStdout(), rec.Command)
	return nil
}

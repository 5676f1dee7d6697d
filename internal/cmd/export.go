package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/logging"
	"github.com/runger/histmcp/internal/storage"
)

var (
	exportDB   string
	exportJSON bool
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Save the loaded history as a SQLite snapshot",
	GroupID: groupCore,
	Long: `Load the history file and save every command into a SQLite database,
keyed by the load ID. Snapshots can be listed with "histmcp snapshots" and
served with "histmcp serve --snapshot".

With redaction enabled (--redact or privacy.redact_secrets), the snapshot
stores the redacted commands.

Examples:
  histmcp export
  histmcp export --db ./history.db
  histmcp --histfile - export < old_history`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDB, "db", "", "Snapshot database (default: ~/.local/share/histmcp/history.db)")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Output the snapshot summary as JSON")
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	source, err := s.openSource(cmd)
	if err != nil {
		return fmt.Errorf("nothing to export: %w", err)
	}

	store := source.Store()
	if r := s.redactor(); r != nil {
		store, err = history.Restore(store.Path(), store.LoadID(), store.LoadedAt(), r.Records(store.All()))
		if err != nil {
			return fmt.Errorf("failed to redact history: %w", err)
		}
	}

	dbPath := snapshotDBPath(exportDB)
	db, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		logging.LogSQLiteError(s.logger, "open", err)
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(commandContext(cmd), 30*time.Second)
	defer cancel()

	snap, err := db.SaveSnapshot(ctx, store)
	if err != nil {
		logging.LogSQLiteError(s.logger, "save snapshot", err)
		return err
	}

	if exportJSON {
		return writeJSON(cmd.OutOrStdout(), snap)
	}

	p := newPrinter(cmd.OutOrStdout(), s.cfg)
	fmt.Fprintf(p.w, "Exported %d commands from %s\n", snap.RecordCount, displayPath(snap.SourcePath))
	fmt.Fprintf(p.w, "  %s %s\n", p.key.Render("load id: "), snap.LoadID)
	fmt.Fprintf(p.w, "  %s %s\n", p.key.Render("database:"), dbPath)
	return nil
}

// displayPath names a snapshot source; history read from stdin has no path.
func displayPath(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/logging"
	"github.com/runger/histmcp/internal/storage"
)

var (
	snapshotsDB    string
	snapshotsJSON  bool
	snapshotsLimit int
)

var snapshotsCmd = &cobra.Command{
	Use:     "snapshots",
	Short:   "List and manage exported snapshots",
	GroupID: groupCore,
	Long: `List, inspect and delete history snapshots saved by "histmcp export".

Without a subcommand, lists snapshots newest first.`,
	Args: cobra.NoArgs,
	RunE: runSnapshotsList,
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotsList,
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <load_id>",
	Short: "Show a snapshot and its commands",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsShow,
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <load_id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotsDelete,
}

func init() {
	pf := snapshotsCmd.PersistentFlags()
	pf.StringVar(&snapshotsDB, "db", "", "Snapshot database (default: ~/.local/share/histmcp/history.db)")
	pf.BoolVar(&snapshotsJSON, "json", false, "Output as JSON")

	snapshotsCmd.Flags().IntVarP(&snapshotsLimit, "limit", "n", 20, "Maximum number of snapshots to list (0 = all)")
	snapshotsListCmd.Flags().IntVarP(&snapshotsLimit, "limit", "n", 20, "Maximum number of snapshots to list (0 = all)")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
	snapshotsCmd.AddCommand(snapshotsDeleteCmd)
}

// snapshotOutput is the JSON form of "snapshots show".
type snapshotOutput struct {
	Snapshot *storage.Snapshot `json:"snapshot"`
	Commands []history.Record  `json:"commands"`
}

// openSnapshots resolves settings and opens the snapshot database.
func openSnapshots(cmd *cobra.Command) (*settings, *storage.SQLiteStore, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	path := snapshotDBPath(snapshotsDB)
	db, err := storage.NewSQLiteStore(path)
	if err != nil {
		logging.LogSQLiteError(s.logger, "open", err)
		return nil, nil, err
	}
	version, err := db.SchemaVersion(commandContext(cmd))
	if err != nil {
		db.Close()
		logging.LogSQLiteError(s.logger, "schema version", err)
		return nil, nil, err
	}
	s.logger.Debug("snapshot database opened", "path", path, "schema_version", version)
	return s, db, nil
}

func runSnapshotsList(cmd *cobra.Command, _ []string) error {
	s, db, err := openSnapshots(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	snaps, err := db.ListSnapshots(commandContext(cmd), snapshotsLimit)
	if err != nil {
		return err
	}

	if snapshotsJSON {
		return writeJSON(cmd.OutOrStdout(), snaps)
	}

	p := newPrinter(cmd.OutOrStdout(), s.cfg)
	if len(snaps) == 0 {
		p.notice("No snapshots.")
		return nil
	}
	for _, snap := range snaps {
		fmt.Fprintf(p.w, "%s  %s  %6d  %s\n",
			p.key.Render(snap.LoadID),
			formatUnixMs(snap.ExportedAtUnixMs),
			snap.RecordCount,
			displayPath(snap.SourcePath),
		)
	}
	return nil
}

func runSnapshotsShow(cmd *cobra.Command, args []string) error {
	s, db, err := openSnapshots(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := commandContext(cmd)
	snap, err := db.GetSnapshot(ctx, args[0])
	if err != nil {
		return err
	}
	records, err := db.SnapshotRecords(ctx, args[0])
	if err != nil {
		return err
	}
	records = s.redactor().Records(records)

	if snapshotsJSON {
		return writeJSON(cmd.OutOrStdout(), snapshotOutput{Snapshot: snap, Commands: records})
	}

	p := newPrinter(cmd.OutOrStdout(), s.cfg)
	fmt.Fprintln(p.w, p.title.Render("Snapshot "+snap.LoadID))
	fmt.Fprintf(p.w, "  %s %s\n", p.key.Render("source:  "), displayPath(snap.SourcePath))
	fmt.Fprintf(p.w, "  %s %s\n", p.key.Render("loaded:  "), formatUnixMs(snap.LoadedAtUnixMs))
	fmt.Fprintf(p.w, "  %s %s\n", p.key.Render("exported:"), formatUnixMs(snap.ExportedAtUnixMs))
	fmt.Fprintf(p.w, "  %s %d of %d lines\n", p.key.Render("commands:"), snap.RecordCount, snap.LineCount)
	fmt.Fprintln(p.w)
	p.records(records)
	return nil
}

func runSnapshotsDelete(cmd *cobra.Command, args []string) error {
	_, db, err := openSnapshots(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteSnapshot(commandContext(cmd), args[0]); err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return fmt.Errorf("no snapshot with load id %s", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
	return nil
}

func formatUnixMs(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}

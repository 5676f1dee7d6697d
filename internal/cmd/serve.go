package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/config"
	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/logging"
	"github.com/runger/histmcp/internal/mcpserver"
	"github.com/runger/histmcp/internal/storage"
)

// latestSnapshot selects the most recently exported snapshot.
const latestSnapshot = "latest"

var (
	serveSnapshot string
	serveDB       string
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the MCP server over stdio",
	GroupID: groupCore,
	Long: `Run the Model Context Protocol server over stdin/stdout.

The history file is loaded once at startup. Send SIGHUP to reload it;
requests already in flight finish against the previous load. SIGINT and
SIGTERM stop the server. Logs go to stderr.

With --snapshot, the server serves a load previously saved by
"histmcp export" instead of reading the history file.

Examples:
  histmcp serve
  histmcp serve --histfile ~/.zsh_history --timestamps parsed
  histmcp serve --snapshot latest`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", `Serve an exported snapshot by load ID ("latest" for the newest)`)
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Snapshot database (default: ~/.local/share/histmcp/history.db)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := serveSource(ctx, cmd, s)
	if err != nil {
		s.logger.Error("cannot start server", "error", err)
		return err
	}

	logging.LogStartup(s.logger, logging.StartupInfo{
		Version:     Version,
		ConfigPath:  s.configPath,
		HistoryPath: source.Store().Path(),
		Timestamps:  s.cfg.TimestampMode(),
		PID:         os.Getpid(),
	})

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go reloadOnSignal(ctx, hup, source, s.logger)

	srv := mcpserver.New(source, s.logger, Version, mcpserver.WithRedactor(s.redactor()))
	err = srv.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("server stopped", "error", err)
		return err
	}

	reason := "client disconnected"
	if ctx.Err() != nil {
		reason = "signal"
	}
	logging.LogShutdown(s.logger, reason)
	return nil
}

// serveSource picks what the server serves: a restored snapshot or the
// configured history file. A history file that fails to load still yields
// a usable, empty source.
func serveSource(ctx context.Context, cmd *cobra.Command, s *settings) (*history.Source, error) {
	if serveSnapshot != "" {
		store, err := restoreSnapshot(ctx, snapshotDBPath(serveDB), serveSnapshot)
		if err != nil {
			return nil, err
		}
		s.logger.Info("snapshot restored",
			"path", store.Path(),
			"records", store.Len(),
			"load_id", store.LoadID(),
		)
		return history.StaticSource(store), nil
	}

	if s.cfg.History.File == stdinFile {
		return nil, errors.New("--histfile - cannot be used with serve: stdin carries the MCP transport")
	}

	source, err := s.openSource(cmd)
	logging.LogHistoryLoaded(s.logger, source.Store(), err)
	return source, nil
}

// restoreSnapshot loads one saved snapshot from the database at dbPath.
func restoreSnapshot(ctx context.Context, dbPath, loadID string) (*history.Store, error) {
	db, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if loadID == latestSnapshot {
		snaps, err := db.ListSnapshots(ctx, 1)
		if err != nil {
			return nil, err
		}
		if len(snaps) == 0 {
			return nil, fmt.Errorf("no snapshots in %s", dbPath)
		}
		loadID = snaps[0].LoadID
	}

	return db.RestoreSnapshot(ctx, loadID)
}

// reloadOnSignal reloads source each time a signal arrives on sig, until
// ctx is done.
func reloadOnSignal(ctx context.Context, sig <-chan os.Signal, source *history.Source, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			store, err := source.Reload(ctx)
			switch {
			case errors.Is(err, context.Canceled):
				return
			case err != nil && !errors.Is(err, history.ErrMissingFile):
				logging.LogReloadFailed(logger, store, err)
			default:
				logging.LogHistoryLoaded(logger, store, err)
			}
		}
	}
}

func snapshotDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	return config.DefaultPaths().SnapshotFile()
}

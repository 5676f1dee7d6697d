// Package storage persists snapshots of loaded shell history in SQLite.
// A snapshot is one history load: its metadata plus every record, keyed by
// the load ID.
package storage

import (
	"context"
	"errors"

	"github.com/runger/histmcp/internal/history"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested load ID.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store defines the snapshot storage operations.
type Store interface {
	SaveSnapshot(ctx context.Context, store *history.Store) (*Snapshot, error)
	GetSnapshot(ctx context.Context, loadID string) (*Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
	SnapshotRecords(ctx context.Context, loadID string) ([]history.Record, error)
	DeleteSnapshot(ctx context.Context, loadID string) error
	RestoreSnapshot(ctx context.Context, loadID string) (*history.Store, error)

	Close() error
}

// Snapshot describes one exported history load.
type Snapshot struct {
	LoadID           string `json:"load_id"`
	SourcePath       string `json:"source_path"`
	LoadedAtUnixMs   int64  `json:"loaded_at_unix_ms"`
	ExportedAtUnixMs int64  `json:"exported_at_unix_ms"`
	RecordCount      int    `json:"record_count"`
	LineCount        int    `json:"line_count"`
}

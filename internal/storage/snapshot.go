package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/runger/histmcp/internal/history"
)

// SaveSnapshot writes every record of store under its load ID. Saving the
// same load twice replaces the earlier copy.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, store *history.Store) (*Snapshot, error) {
	snap := &Snapshot{
		LoadID:           store.LoadID(),
		SourcePath:       store.Path(),
		LoadedAtUnixMs:   store.LoadedAt().UnixMilli(),
		ExportedAtUnixMs: time.Now().UnixMilli(),
		RecordCount:      store.Len(),
		LineCount:        store.Stats().Lines,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// records cascade with the load row
	if _, err := tx.ExecContext(ctx, `DELETE FROM loads WHERE load_id = ?`, snap.LoadID); err != nil {
		return nil, fmt.Errorf("failed to delete previous snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loads (
			load_id, source_path, loaded_at_unix_ms, exported_at_unix_ms,
			record_count, line_count
		) VALUES (?, ?, ?, ?, ?, ?)
	`, snap.LoadID, snap.SourcePath, snap.LoadedAtUnixMs, snap.ExportedAtUnixMs,
		snap.RecordCount, snap.LineCount)
	if err != nil {
		return nil, fmt.Errorf("failed to insert load: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (record_id, load_id, line_id, command, ts_unix_ms)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range store.All() {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), snap.LoadID, r.ID, r.Command, r.Timestamp.UnixMilli()); err != nil {
			return nil, fmt.Errorf("failed to insert record %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return snap, nil
}

// GetSnapshot returns the metadata of one snapshot.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, loadID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT load_id, source_path, loaded_at_unix_ms, exported_at_unix_ms,
		       record_count, line_count
		FROM loads WHERE load_id = ?
	`, loadID)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, loadID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns snapshots newest export first. A limit of zero or
// less returns all of them.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	query := `
		SELECT load_id, source_path, loaded_at_unix_ms, exported_at_unix_ms,
		       record_count, line_count
		FROM loads
		ORDER BY exported_at_unix_ms DESC, load_id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snaps, nil
}

// SnapshotRecords returns the records of a snapshot in file order.
func (s *SQLiteStore) SnapshotRecords(ctx context.Context, loadID string) ([]history.Record, error) {
	if _, err := s.GetSnapshot(ctx, loadID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT line_id, command, ts_unix_ms
		FROM records WHERE load_id = ?
		ORDER BY line_id
	`, loadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []history.Record{}
	for rows.Next() {
		var (
			r  history.Record
			ts int64
		)
		if err := rows.Scan(&r.ID, &r.Command, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Timestamp = time.UnixMilli(ts).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// RestoreSnapshot rebuilds the history store of a saved load, with its
// original load ID, path and load instant.
func (s *SQLiteStore) RestoreSnapshot(ctx context.Context, loadID string) (*history.Store, error) {
	snap, err := s.GetSnapshot(ctx, loadID)
	if err != nil {
		return nil, err
	}
	records, err := s.SnapshotRecords(ctx, loadID)
	if err != nil {
		return nil, err
	}
	store, err := history.Restore(snap.SourcePath, snap.LoadID, time.UnixMilli(snap.LoadedAtUnixMs).UTC(), records)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s is corrupt: %w", loadID, err)
	}
	return store, nil
}

// DeleteSnapshot removes a snapshot and its records.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, loadID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM loads WHERE load_id = ?`, loadID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, loadID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	err := row.Scan(
		&snap.LoadID,
		&snap.SourcePath,
		&snap.LoadedAtUnixMs,
		&snap.ExportedAtUnixMs,
		&snap.RecordCount,
		&snap.LineCount,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

package history

import (
	"fmt"
	"strings"
	"time"
)

// Restore rebuilds a Store from records saved by an earlier load, keeping
// that load's identity. Records must be in ascending ID order and carry
// non-empty, trimmed commands.
func Restore(path, loadID string, loadedAt time.Time, records []Record) (*Store, error) {
	if loadID == "" {
		return nil, fmt.Errorf("restore: empty load id")
	}

	recs := cloneRecords(records)
	folded := make([]string, len(recs))
	last := -1
	for i, r := range recs {
		if r.ID <= last {
			return nil, fmt.Errorf("restore: record id %d out of order after %d", r.ID, last)
		}
		if r.Command == "" || strings.TrimSpace(r.Command) != r.Command {
			return nil, fmt.Errorf("restore: record %d has an empty or untrimmed command", r.ID)
		}
		folded[i] = fold(r.Command)
		last = r.ID
	}

	store := newStore(path, loadedAt, recs, folded, Stats{Commands: len(recs)})
	store.loadID = loadID
	return store, nil
}

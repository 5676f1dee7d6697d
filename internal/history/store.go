package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// EmptyQueryRecentLimit is how many of the most recent records Search
// returns when the query is empty.
const EmptyQueryRecentLimit = 50

// Store is the ordered, read-only set of records from one history load.
// All methods are safe for concurrent use; nothing mutates a Store after
// construction.
type Store struct {
	path     string
	loadID   string
	loadedAt time.Time
	stats    Stats

	records []Record
	folded  []string    // case-folded commands, parallel to records
	byID    map[int]int // record ID -> position in records
}

func newStore(path string, loadedAt time.Time, records []Record, folded []string, stats Stats) *Store {
	byID := make(map[int]int, len(records))
	for i, r := range records {
		byID[r.ID] = i
	}
	return &Store{
		path:     path,
		loadID:   uuid.NewString(),
		loadedAt: loadedAt,
		stats:    stats,
		records:  records,
		folded:   folded,
		byID:     byID,
	}
}

// Path returns the absolute path the store was loaded from, or "" for
// stores built by Parse.
func (s *Store) Path() string { return s.path }

// LoadID uniquely identifies this load.
func (s *Store) LoadID() string { return s.loadID }

// LoadedAt returns the load instant.
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// Stats returns line classification counts for the load.
func (s *Store) Stats() Stats { return s.stats }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// All returns every record in file order.
func (s *Store) All() []Record {
	return cloneRecords(s.records)
}

// Get returns the record with the given ID. The boolean is false when no
// record has that ID, which is an ordinary outcome since IDs are sparse.
func (s *Store) Get(id int) (Record, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Recent returns the last limit records, oldest first. A limit larger than
// the store returns everything; a limit of zero or less returns nothing.
func (s *Store) Recent(limit int) []Record {
	if limit <= 0 {
		return []Record{}
	}
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return cloneRecords(s.records[len(s.records)-limit:])
}

// Search returns every record whose command contains query, ignoring case,
// in file order. An empty query does not match anything; it returns the
// EmptyQueryRecentLimit most recent records instead.
func (s *Store) Search(query string) []Record {
	if query == "" {
		return s.Recent(EmptyQueryRecentLimit)
	}

	needle := fold(query)
	matches := []Record{}
	for i, haystack := range s.folded {
		if strings.Contains(haystack, needle) {
			matches = append(matches, s.records[i])
		}
	}
	return matches
}

// fold applies Unicode case folding. A Caser holds state, so each call
// builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

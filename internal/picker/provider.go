package picker

import (
	"context"

	"github.com/runger/histmcp/internal/history"
)

// Provider supplies records to the picker.
type Provider interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// Request describes what the picker wants from a Provider.
type Request struct {
	RequestID uint64 // Monotonically increasing, for stale response detection
	Query     string // Substring filter; empty means everything
	TabID     string // Active tab identifier
	Limit     int
}

// Response carries records back from a Provider, newest first.
type Response struct {
	RequestID uint64 // Must match Request.RequestID to be accepted
	Items     []history.Record
	AtEnd     bool // Items holds every match
}

// Tab is one view of the history the user can cycle through with Tab.
type Tab struct {
	ID    string
	Label string
}

// Tab identifiers understood by StoreProvider.
const (
	TabAll    = "all"
	TabUnique = "unique"
)

// DefaultTabs lists every record, then one record per distinct command.
func DefaultTabs() []Tab {
	return []Tab{
		{ID: TabAll, Label: "All"},
		{ID: TabUnique, Label: "Unique"},
	}
}

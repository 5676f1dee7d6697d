package picker

import (
	"context"

	"github.com/runger/histmcp/internal/history"
)

// StoreProvider answers picker requests from the current store of a
// history.Source, so a reload between keystrokes is picked up.
type StoreProvider struct {
	source *history.Source
}

// NewStoreProvider returns a Provider backed by source.
func NewStoreProvider(source *history.Source) *StoreProvider {
	return &StoreProvider{source: source}
}

// Fetch filters the store by req.Query and returns at most req.Limit
// records, newest first. The unique tab keeps only the newest occurrence of
// each command.
func (p *StoreProvider) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	store := p.source.Store()
	var matches []history.Record
	if req.Query == "" {
		matches = store.All()
	} else {
		matches = store.Search(req.Query)
	}

	items := make([]history.Record, 0, min(len(matches), max(req.Limit, 0)))
	seen := make(map[string]struct{})
	atEnd := true
	for i := len(matches) - 1; i >= 0; i-- {
		rec := matches[i]
		if req.TabID == TabUnique {
			if _, dup := seen[rec.Command]; dup {
				continue
			}
			seen[rec.Command] = struct{}{}
		}
		if len(items) >= req.Limit {
			atEnd = false
			break
		}
		items = append(items, rec)
	}

	return Response{RequestID: req.RequestID, Items: items, AtEnd: atEnd}, nil
}

package history

import (
	"context"
	"errors"
	"sync/atomic"
)

// Source holds the current Store for a history file and swaps in a new one
// on Reload. Readers always observe a fully built store.
type Source struct {
	path    string
	opts    []LoadOption
	static  bool
	current atomic.Pointer[Store]
}

// NewSource loads path and returns a Source serving the result. The Source is
// usable even when err is non-nil; it then serves an empty store.
func NewSource(path string, opts ...LoadOption) (*Source, error) {
	src := &Source{path: path, opts: opts}
	store, err := Load(path, opts...)
	src.current.Store(store)
	return src, err
}

// StaticSource wraps an already built store. Reload on a static source
// keeps the store unchanged.
func StaticSource(store *Store) *Source {
	src := &Source{static: true}
	src.current.Store(store)
	return src
}

// Store returns the store currently being served.
func (s *Source) Store() *Store {
	return s.current.Load()
}

// Reload rereads the history file and atomically replaces the served store.
//
// A missing file replaces the store with an empty one, mirroring the initial
// load. Any other failure leaves the previous store in place.
func (s *Source) Reload(ctx context.Context) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return s.Store(), err
	}
	if s.static {
		return s.Store(), nil
	}

	store, err := Load(s.path, s.opts...)
	if err != nil && !errors.Is(err, ErrMissingFile) {
		return s.Store(), err
	}
	s.current.Store(store)
	return store, err
}

package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrMissingFile is returned alongside an empty store when the history file
// does not exist. Callers should treat it as a warning.
var ErrMissingFile = errors.New("history file not found")

// Stats counts how the raw lines of a loaded file were classified.
type Stats struct {
	Lines      int `json:"lines"`
	Commands   int `json:"commands"`
	Blank      int `json:"blank"`
	Timestamps int `json:"timestamps"`
	Comments   int `json:"comments"`
}

// LoadOption customizes Load and Parse.
type LoadOption func(*loadOptions)

type loadOptions struct {
	mode TimestampMode
	now  func() time.Time
}

// WithTimestampMode selects how record timestamps are assigned.
func WithTimestampMode(mode TimestampMode) LoadOption {
	return func(o *loadOptions) {
		if mode != "" {
			o.mode = mode
		}
	}
}

// WithClock overrides the clock used for the load instant.
func WithClock(now func() time.Time) LoadOption {
	return func(o *loadOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func newLoadOptions(opts []LoadOption) loadOptions {
	o := loadOptions{mode: TimestampsLoad, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load reads the history file at path and builds a Store.
//
// The path is expanded (leading "~") and made absolute before opening. Load
// always returns a non-nil store: when the file is missing the store is empty
// and the error wraps ErrMissingFile; on any other failure the store is empty
// and the error describes the failure.
func Load(path string, opts ...LoadOption) (*Store, error) {
	o := newLoadOptions(opts)

	resolved, err := ExpandPath(path)
	if err != nil {
		return newStore(path, o.now(), nil, nil, Stats{}), err
	}

	file, err := os.Open(resolved) //nolint:gosec // G304: path is the user's configured history file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newStore(resolved, o.now(), nil, nil, Stats{}), fmt.Errorf("%w: %s", ErrMissingFile, resolved)
		}
		return newStore(resolved, o.now(), nil, nil, Stats{}), fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	return parse(file, resolved, o)
}

// Parse builds a Store from history text read from r. The resulting store
// has no source path.
func Parse(r io.Reader, opts ...LoadOption) (*Store, error) {
	return parse(r, "", newLoadOptions(opts))
}

func parse(r io.Reader, path string, o loadOptions) (*Store, error) {
	loadedAt := o.now()
	b := &storeBuilder{mode: o.mode, loadedAt: loadedAt}

	reader := bufio.NewReaderSize(transform.NewReader(r, decoder()), 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			b.add(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return newStore(path, loadedAt, nil, nil, Stats{}), fmt.Errorf("failed to read history file: %w", err)
		}
	}

	return newStore(path, loadedAt, b.records, b.folded, b.stats), nil
}

// decoder turns arbitrary bytes into valid UTF-8: a UTF-8 BOM is dropped,
// UTF-16 input with a BOM is transcoded, and malformed sequences are removed.
func decoder() transform.Transformer {
	return transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
}

// storeBuilder accumulates records line by line.
type storeBuilder struct {
	mode     TimestampMode
	loadedAt time.Time
	next     int       // index of the next raw line
	pending  time.Time // stamp from a "#<unix>" line directly above
	records  []Record
	folded   []string
	stats    Stats
}

func (b *storeBuilder) add(raw string) {
	id := b.next
	b.next++
	b.stats.Lines++

	c := Classify(raw)
	switch c.Kind {
	case KindSkip:
		if c.Rule == "timestamp" {
			b.stats.Timestamps++
		} else {
			b.stats.Blank++
		}
		b.pending = c.Stamp
	case KindComment:
		b.stats.Comments++
		b.pending = time.Time{}
	case KindCommand:
		b.stats.Commands++
		b.records = append(b.records, Record{
			ID:        id,
			Command:   c.Command,
			Timestamp: b.timestamp(c.Stamp),
		})
		b.folded = append(b.folded, fold(c.Command))
		b.pending = time.Time{}
	}
}

func (b *storeBuilder) timestamp(own time.Time) time.Time {
	if b.mode != TimestampsParsed {
		return b.loadedAt
	}
	if !own.IsZero() {
		return own
	}
	if !b.pending.IsZero() {
		return b.pending
	}
	return b.loadedAt
}

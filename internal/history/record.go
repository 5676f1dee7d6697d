// Package history loads shell history files into an immutable, indexed store
// and answers recency and substring queries against it.
package history

import (
	"fmt"
	"time"
)

// Record is a single command parsed from a history file.
//
// ID is the zero-based index of the raw line the command came from. Blank,
// timestamp and comment lines still consume an index, so IDs are sparse.
type Record struct {
	ID        int       `json:"id"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// TimestampMode selects how record timestamps are assigned.
type TimestampMode string

const (
	// TimestampsLoad stamps every record with the instant the file was loaded.
	TimestampsLoad TimestampMode = "load"

	// TimestampsParsed keeps a timestamp recovered from the history dialect
	// (a bash "#<unix>" line directly above the command, or a zsh extended
	// ": <unix>:<dur>;" prefix) and falls back to the load instant otherwise.
	TimestampsParsed TimestampMode = "parsed"
)

// ParseTimestampMode validates a mode name. The empty string selects TimestampsLoad.
func ParseTimestampMode(s string) (TimestampMode, error) {
	switch TimestampMode(s) {
	case "", TimestampsLoad:
		return TimestampsLoad, nil
	case TimestampsParsed:
		return TimestampsParsed, nil
	default:
		return "", fmt.Errorf("invalid timestamp mode %q (must be load or parsed)", s)
	}
}

package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runger/histmcp/internal/history"
)

func TestFormatRecent(t *testing.T) {
	records := []history.Record{{ID: 3, Command: "ls"}, {ID: 7, Command: "git status"}}

	assert.Equal(t, "Recent commands:\n\n[3] ls\n[7] git status\n", FormatRecent(records))
	assert.Equal(t, "Recent commands:\n\n", FormatRecent(nil))
}

func TestFormatSearch(t *testing.T) {
	records := []history.Record{{ID: 12, Command: "grep -r 'x' ."}}

	assert.Equal(t, "Search results for 'x':\n\n[12] grep -r 'x' .\n", FormatSearch("x", records))
	assert.Equal(t, "Search results for 'zzz':\n\nNo matching commands found.", FormatSearch("zzz", nil))
}

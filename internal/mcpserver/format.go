package mcpserver

import (
	"strconv"
	"strings"

	"github.com/runger/histmcp/internal/history"
)

// FormatRecent renders the text body of a history://recent resource.
func FormatRecent(records []history.Record) string {
	var b strings.Builder
	b.WriteString("Recent commands:\n\n")
	writeLines(&b, records)
	return b.String()
}

// FormatSearch renders the text body of a history://search resource.
func FormatSearch(query string, records []history.Record) string {
	var b strings.Builder
	b.WriteString("Search results for '")
	b.WriteString(query)
	b.WriteString("':\n\n")
	if len(records) == 0 {
		b.WriteString("No matching commands found.")
		return b.String()
	}
	writeLines(&b, records)
	return b.String()
}

// writeLines writes one "[id] command" line per record.
func writeLines(b *strings.Builder, records []history.Record) {
	for _, r := range records {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(r.ID))
		b.WriteString("] ")
		b.WriteString(r.Command)
		b.WriteByte('\n')
	}
}

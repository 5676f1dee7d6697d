package picker

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks the elided middle of a truncated command.
const Ellipsis = "…"

// ansiRE matches CSI sequences (colors, cursor motion), OSC sequences ended
// by BEL or ST, charset designations, and other two-byte escapes.
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;?]*[A-Za-z]` +
	`|\].*?(?:\x1b\\|\x07)` +
	`|[()][A-B0-2]` +
	`|[#*+\-./][A-Za-z0-9]` +
	`)`)

// escapeLiterals rewrites escape spellings people type into printf and echo
// so they read as one token instead of line noise.
var escapeLiterals = strings.NewReplacer(
	`\033[`, "<ESC>[",
	`\033]`, "<ESC>]",
	`\x1b[`, "<ESC>[",
	`\x1B[`, "<ESC>[",
	`\x1b]`, "<ESC>]",
	`\x1B]`, "<ESC>]",
	`\e[`, "<ESC>[",
	`\e]`, "<ESC>]",
	"\t", "  ",
)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// DisplayCommand prepares a history command for one terminal row: raw escape
// bytes are dropped, typed escape spellings are shortened and tabs become
// spaces. The result is for display only and must never be executed.
func DisplayCommand(s string) string {
	if s == "" {
		return s
	}
	return escapeLiterals.Replace(StripANSI(s))
}

// MiddleTruncate shortens s to at most maxWidth terminal cells by replacing
// its middle with an ellipsis. Wide runes (CJK, emoji) count as two cells.
// Below three cells there is no room for head and tail, so s is cut from
// the right instead.
func MiddleTruncate(s string, maxWidth int) string {
	head, tail, cut := splitMiddle(s, maxWidth)
	if !cut {
		return head
	}
	return head + Ellipsis + tail
}

// splitMiddle returns the head and tail that remain when s is squeezed into
// maxWidth cells around a one-cell ellipsis. cut is false when s already
// fits (head is then s) or when maxWidth is too small for an ellipsis.
func splitMiddle(s string, maxWidth int) (head, tail string, cut bool) {
	if maxWidth <= 0 {
		return "", "", false
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s, "", false
	}
	if maxWidth < 3 {
		return prefixWithin(s, maxWidth), "", false
	}
	remaining := maxWidth - runewidth.StringWidth(Ellipsis)
	return prefixWithin(s, (remaining+1)/2), suffixWithin(s, remaining/2), true
}

// prefixWithin returns the longest prefix of s that fits in maxWidth cells.
func prefixWithin(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

// suffixWithin returns the longest suffix of s that fits in maxWidth cells.
func suffixWithin(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}

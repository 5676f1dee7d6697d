package history

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the outcome of classifying one history line.
type Kind int

const (
	// KindSkip marks a line that carries no command: blank lines and
	// "#<unix>" timestamp companions.
	KindSkip Kind = iota
	// KindComment marks any other line starting with '#'.
	KindComment
	// KindCommand marks a line that produces a Record.
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindComment:
		return "comment"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Classification is the tagged result of Classify.
type Classification struct {
	Kind    Kind
	Command string    // set for KindCommand
	Stamp   time.Time // zero unless the line itself carried a timestamp
	Rule    string    // name of the rule that decided the line
}

// rule is a pure predicate over a trimmed line. It reports ok when it
// decided the line; rules are tried in order and the first match wins.
type rule struct {
	name  string
	apply func(line string) (Classification, bool)
}

var rules = []rule{
	{name: "blank", apply: classifyBlank},
	{name: "timestamp", apply: classifyTimestamp},
	{name: "comment", apply: classifyComment},
	{name: "zsh-extended", apply: classifyZshExtended},
	{name: "command", apply: classifyCommand},
}

// Classify trims surrounding whitespace from raw and runs it through the
// ordered rule set.
func Classify(raw string) Classification {
	line := strings.TrimSpace(raw)
	for _, r := range rules {
		if c, ok := r.apply(line); ok {
			c.Rule = r.name
			return c
		}
	}
	return Classification{Kind: KindSkip}
}

func classifyBlank(line string) (Classification, bool) {
	return Classification{Kind: KindSkip}, line == ""
}

// classifyTimestamp matches bash HISTTIMEFORMAT companions: '#' followed
// only by digits.
func classifyTimestamp(line string) (Classification, bool) {
	digits, ok := strings.CutPrefix(line, "#")
	if !ok || !isDigits(digits) {
		return Classification{}, false
	}
	return Classification{Kind: KindSkip, Stamp: unixStamp(digits)}, true
}

func classifyComment(line string) (Classification, bool) {
	return Classification{Kind: KindComment}, strings.HasPrefix(line, "#")
}

// classifyZshExtended strips the ": <unix>:<duration>;" prefix written by
// zsh's EXTENDED_HISTORY option. A prefix with nothing after it keeps the
// whole line as the command, so every non-comment line yields a record.
func classifyZshExtended(line string) (Classification, bool) {
	rest, ok := strings.CutPrefix(line, ": ")
	if !ok {
		return Classification{}, false
	}
	meta, cmd, ok := strings.Cut(rest, ";")
	if !ok {
		return Classification{}, false
	}
	start, duration, ok := strings.Cut(meta, ":")
	if !ok || !isDigits(start) || !isDigits(duration) {
		return Classification{}, false
	}

	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		cmd = line
	}
	return Classification{Kind: KindCommand, Command: cmd, Stamp: unixStamp(start)}, true
}

// maxUnixStamp is 9999-12-31T23:59:59Z, the last instant RFC 3339 can encode.
const maxUnixStamp = 253402300799

// unixStamp parses decimal Unix seconds. Values that overflow or lie past
// year 9999 give the zero time, so the record falls back to the load instant.
func unixStamp(digits string) time.Time {
	ts, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || ts > maxUnixStamp {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

func classifyCommand(line string) (Classification, bool) {
	return Classification{Kind: KindCommand, Command: line}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

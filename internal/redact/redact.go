package redact

import (
	"github.com/runger/histmcp/internal/history"
)

// Redactor applies an ordered rule list. A nil *Redactor passes text
// through unchanged, so callers can hold an optional redactor without
// branching.
type Redactor struct {
	rules []Rule
}

// New returns a Redactor using rules, or the built-in rules when none are
// given.
func New(rules ...Rule) *Redactor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Redactor{rules: rules}
}

// String returns s with every rule applied.
func (r *Redactor) String(s string) string {
	if r == nil || s == "" {
		return s
	}
	for _, rule := range r.rules {
		s = rule.Regex.ReplaceAllString(s, rule.Replacement)
	}
	return s
}

// Matches lists the names of rules that fire on s, in rule order.
func (r *Redactor) Matches(s string) []string {
	if r == nil {
		return nil
	}
	var names []string
	for _, rule := range r.rules {
		if rule.Regex.MatchString(s) {
			names = append(names, rule.Name)
		}
	}
	return names
}

// Record returns rec with its command redacted.
func (r *Redactor) Record(rec history.Record) history.Record {
	rec.Command = r.String(rec.Command)
	return rec
}

// Records redacts a slice in place and returns it. Store results are
// copies, so this never reaches back into the store.
func (r *Redactor) Records(recs []history.Record) []history.Record {
	if r == nil {
		return recs
	}
	for i := range recs {
		recs[i].Command = r.String(recs[i].Command)
	}
	return recs
}

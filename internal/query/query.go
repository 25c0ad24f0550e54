// Package query turns user search input into wallhaven API parameters.
package query

import (
	"strings"
)

// Mode says how a term participates in the search.
type Mode int

const (
	Plain Mode = iota
	Include
	Exclude
)

// Term is a single search term or quoted phrase.
type Term struct {
	Text   string
	Mode   Mode
	Phrase bool
}

func (t Term) String() string {
	text := t.Text
	if t.Phrase {
		text = `"` + text + `"`
	}
	switch t.Mode {
	case Include:
		return "+" + text
	case Exclude:
		return "-" + text
	default:
		return text
	}
}

// Query is a parsed free-text query.
type Query struct {
	Terms []Term
}

// Parse splits s into terms. "+" and "-" prefixes mark inclusion and
// exclusion, double quotes group phrases, an unterminated quote runs to the
// end of the input, and empty phrases or bare prefixes are dropped.
func Parse(s string) Query {
	var (
		q Query
		i int
	)
	rs := []rune(s)

	for i < len(rs) {
		for i < len(rs) && isSpace(rs[i]) {
			i++
		}
		if i >= len(rs) {
			break
		}

		mode := Plain
		switch rs[i] {
		case '+':
			mode = Include
			i++
		case '-':
			mode = Exclude
			i++
		}
		if i >= len(rs) {
			break
		}

		if rs[i] == '"' {
			i++
			start := i
			for i < len(rs) && rs[i] != '"' {
				i++
			}
			text := collapseSpace(string(rs[start:i]))
			if i < len(rs) {
				i++
			}
			if text != "" {
				q.Terms = append(q.Terms, Term{Text: text, Mode: mode, Phrase: true})
			}
			continue
		}

		start := i
		for i < len(rs) && !isSpace(rs[i]) {
			i++
		}
		text := string(rs[start:i])
		if text == "" || isSpace(rs[start]) {
			continue
		}
		q.Terms = append(q.Terms, Term{Text: text, Mode: mode})
	}

	return q
}

// String renders the canonical form sent to the API.
func (q Query) String() string {
	parts := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the query has no terms.
func (q Query) Empty() bool {
	return len(q.Terms) == 0
}

// ExclusionOnly reports whether every term is an exclusion. Such queries give
// no positive words to describe a result, so a tag is looked up instead.
func (q Query) ExclusionOnly() bool {
	if q.Empty() {
		return false
	}
	for _, t := range q.Terms {
		if t.Mode != Exclude {
			return false
		}
	}
	return true
}

// Label joins the non-excluded terms for use in file names and notifications.
func (q Query) Label() string {
	var parts []string
	for _, t := range q.Terms {
		if t.Mode == Exclude {
			continue
		}
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// Normalized returns the canonical query with lower-cased terms.
func (q Query) Normalized() string {
	return strings.ToLower(q.String())
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

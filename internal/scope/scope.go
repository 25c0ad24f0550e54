// Package scope identifies the unit of independent wallpaper history:
// all monitors at once, or a single monitor.
package scope

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid is returned for tokens that look like a scope but are not valid.
var ErrInvalid = errors.New("invalid scope")

// Scope is either Global (0) or a 1-based monitor index.
type Scope int

// Global applies to every monitor.
const Global Scope = 0

// Monitor returns the scope of a single monitor.
func Monitor(index int) Scope {
	return Scope(index)
}

// IsGlobal reports whether s covers all monitors.
func (s Scope) IsGlobal() bool {
	return s == Global
}

// Index returns the 1-based monitor index, or 0 for Global.
func (s Scope) Index() int {
	return int(s)
}

// Key returns the stable name used for per-scope state files.
func (s Scope) Key() string {
	if s.IsGlobal() {
		return "global"
	}
	return fmt.Sprintf("monitor-%d", int(s))
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return "all monitors"
	}
	return fmt.Sprintf("monitor %d", int(s))
}

// Parse parses a scope token: "all"/"global" or a positive integer.
func Parse(token string) (Scope, error) {
	switch strings.ToLower(token) {
	case "all", "global":
		return Global, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		return Global, fmt.Errorf("%w: %q", ErrInvalid, token)
	}
	return Monitor(n), nil
}

// Extract pulls a scope token out of args, wherever it appears, and returns
// the remaining arguments. Only bare integers are treated as scope tokens so
// flag values ("--keep 30") are left alone. Giving two scope tokens is an error.
func Extract(args []string) (Scope, []string, error) {
	var (
		found bool
		s     = Global
		rest  = make([]string, 0, len(args))
	)

	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			rest = append(rest, args[i:]...)
			break
		}
		if !isScopeToken(a) || (i > 0 && takesValue(args[i-1])) {
			rest = append(rest, a)
			continue
		}
		parsed, err := Parse(a)
		if err != nil {
			return Global, nil, err
		}
		if found && parsed != s {
			return Global, nil, fmt.Errorf("%w: more than one scope given", ErrInvalid)
		}
		s = parsed
		found = true
	}

	return s, rest, nil
}

func isScopeToken(a string) bool {
	if a == "" {
		return false
	}
	for _, r := range a {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// takesValue reports whether a preceding "--flag" argument consumes the next
// token. "--flag=value" and boolean flags do not.
func takesValue(prev string) bool {
	if !strings.HasPrefix(prev, "-") || strings.Contains(prev, "=") {
		return false
	}
	name := strings.TrimLeft(prev, "-")
	_, ok := valueFlags[name]
	return ok
}

// valueFlags lists the CLI flags whose next token is a value.
var valueFlags = map[string]struct{}{
	"keep":        {},
	"timeout":     {},
	"query":       {},
	"color":       {},
	"atleast":     {},
	"resolutions": {},
	"ratios":      {},
	"sorting":     {},
	"order":       {},
	"top-range":   {},
	"api-key":     {},
	"config":      {},
	"log-level":   {},
	"log-file":    {},
	"desktop":     {},
}

// Package history stores, per scope, the ordered log of applied wallpapers
// and a cursor into it.
//
// Each scope has two files under the store directory: <key>.log holds one
// absolute path per line, oldest first, and <key>.cursor holds the offset of
// the displayed entry counted from the newest one.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/fsutil"
	"github.com/darkawower/wallhop/internal/scope"
)

var (
	// ErrNoHistory indicates a scope that never had a wallpaper applied.
	ErrNoHistory = errors.New("no wallpaper history")

	// ErrNotFound indicates an index outside the log.
	ErrNotFound = errors.New("history entry not found")
)

// DefaultMaxEntries is used when the store is created with a non-positive max.
const DefaultMaxEntries = 50

// Report summarizes a cleanup pass.
type Report struct {
	Removed int
	Kept    int
}

// Store is a file-backed history store.
type Store struct {
	dir        string
	maxEntries int

	// Exists reports whether a wallpaper file is still present.
	Exists func(path string) bool

	writeLines func(path string, lines []string) error
}

// NewStore creates a store rooted at dir keeping at most maxEntries per scope.
func NewStore(dir string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		dir:        dir,
		maxEntries: maxEntries,
		Exists:     fsutil.Exists,
		writeLines: fsutil.WriteLines,
	}
}

// MaxEntries returns the configured bound.
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

func (s *Store) logPath(sc scope.Scope) string {
	return filepath.Join(s.dir, sc.Key()+".log")
}

func (s *Store) cursorPath(sc scope.Scope) string {
	return filepath.Join(s.dir, sc.Key()+".cursor")
}

// Append adds path as the newest entry, trims the log and resets the cursor.
// The cursor is reset before the log is rewritten, so an interrupted append
// leaves the previous newest entry current.
func (s *Store) Append(sc scope.Scope, path string) error {
	entries, err := fsutil.ReadLines(s.logPath(sc))
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	entries = append(entries, path)
	if len(entries) > s.maxEntries {
		entries = entries[len(entries)-s.maxEntries:]
	}

	if err := s.writeCursor(sc, 0); err != nil {
		return err
	}
	if err := s.writeLines(s.logPath(sc), entries); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	log.Debug().Str("scope", sc.Key()).Str("path", path).Int("length", len(entries)).Msg("history appended")
	return nil
}

// Read returns the entry at offset index from the newest one.
func (s *Store) Read(sc scope.Scope, index int) (string, error) {
	entries, err := s.load(sc)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(entries) {
		return "", fmt.Errorf("%w: index %d of %d", ErrNotFound, index, len(entries))
	}
	return entries[len(entries)-1-index], nil
}

// Length returns the number of entries.
func (s *Store) Length(sc scope.Scope) (int, error) {
	entries, err := s.load(sc)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Entries returns every entry, newest first.
func (s *Store) Entries(sc scope.Scope) ([]string, error) {
	entries, err := s.load(sc)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

// Cursor returns the scope's cursor. Values that are unreadable or outside
// the log are treated as 0.
func (s *Store) Cursor(sc scope.Scope) (int, error) {
	entries, err := s.load(sc)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(s.cursorPath(sc))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cursor: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 || n >= len(entries) {
		return 0, nil
	}
	return n, nil
}

// SetCursor persists the cursor. It must point inside the log.
func (s *Store) SetCursor(sc scope.Scope, n int) error {
	length, err := s.Length(sc)
	if err != nil {
		return err
	}
	if n < 0 || n >= length {
		return fmt.Errorf("%w: cursor %d of %d", ErrNotFound, n, length)
	}
	return s.writeCursor(sc, n)
}

// Current returns the entry under the cursor.
func (s *Store) Current(sc scope.Scope) (string, error) {
	cur, err := s.Cursor(sc)
	if err != nil {
		return "", err
	}
	return s.Read(sc, cur)
}

// Cleanup drops entries whose files no longer exist, keeps the order of the
// rest and resets the cursor.
func (s *Store) Cleanup(sc scope.Scope) (Report, error) {
	entries, err := s.load(sc)
	if err != nil {
		return Report{}, err
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if s.Exists(e) {
			kept = append(kept, e)
		}
	}

	report := Report{Removed: len(entries) - len(kept), Kept: len(kept)}

	if err := s.writeCursor(sc, 0); err != nil {
		return Report{}, err
	}
	if report.Removed > 0 {
		if err := s.writeLines(s.logPath(sc), kept); err != nil {
			return Report{}, fmt.Errorf("write history: %w", err)
		}
	}

	log.Debug().Str("scope", sc.Key()).Int("removed", report.Removed).Int("kept", report.Kept).Msg("history cleaned")
	return report, nil
}

// load returns the entries oldest first, or ErrNoHistory when the scope has
// neither a log nor a cursor file.
func (s *Store) load(sc scope.Scope) ([]string, error) {
	logPath := s.logPath(sc)
	if !fsutil.Exists(logPath) && !fsutil.Exists(s.cursorPath(sc)) {
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, sc)
	}
	entries, err := fsutil.ReadLines(logPath)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

func (s *Store) writeCursor(sc scope.Scope, n int) error {
	if err := fsutil.WriteFileAtomic(s.cursorPath(sc), []byte(strconv.Itoa(n)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}

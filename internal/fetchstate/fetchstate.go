// Package fetchstate remembers, per search fingerprint, which result page to
// request next and the random seed the API handed out for that search.
//
// The store is a tab-separated file, one record per line, oldest first:
//
//	<fingerprint>\t<page>\t<seed>
package fetchstate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/fsutil"
)

// DefaultMaxEntries is used when the store is created with a non-positive max.
const DefaultMaxEntries = 100

// Record is the resumable position of one search.
type Record struct {
	Page int
	Seed string
}

// Store is a bounded, file-backed fingerprint table.
type Store struct {
	path       string
	maxEntries int
}

// NewStore creates a store at path keeping at most maxEntries records.
func NewStore(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{path: path, maxEntries: maxEntries}
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the record for fp, or page 1 without seed when the record is
// absent or malformed.
func (s *Store) Load(fp string) (Record, error) {
	lines, err := fsutil.ReadLines(s.path)
	if err != nil {
		return Record{}, fmt.Errorf("read fetch state: %w", err)
	}

	for i := len(lines) - 1; i >= 0; i-- {
		key, rec, ok := parseLine(lines[i])
		if key != fp {
			continue
		}
		if !ok {
			log.Debug().Str("fingerprint", fp).Msg("malformed fetch state record, starting over")
			break
		}
		return rec, nil
	}
	return Record{Page: 1}, nil
}

// Save upserts the record for fp. The updated record becomes the newest one
// and the oldest records are dropped past the bound.
func (s *Store) Save(fp string, page int, seed string) error {
	if fp == "" || strings.ContainsAny(fp, "\t\n") {
		return fmt.Errorf("invalid fingerprint %q", fp)
	}
	if page < 1 {
		page = 1
	}
	seed = strings.NewReplacer("\t", "", "\n", "").Replace(seed)

	return s.rewrite(fp, func(kept []string) []string {
		return append(kept, fmt.Sprintf("%s\t%d\t%s", fp, page, seed))
	})
}

// Advance moves fp to its next page, keeping the seed.
func (s *Store) Advance(fp string) error {
	rec, err := s.Load(fp)
	if err != nil {
		return err
	}
	return s.Save(fp, rec.Page+1, rec.Seed)
}

// Reset forgets fp so the next search starts from page 1.
func (s *Store) Reset(fp string) error {
	return s.rewrite(fp, func(kept []string) []string { return kept })
}

// Len returns the number of records.
func (s *Store) Len() (int, error) {
	lines, err := fsutil.ReadLines(s.path)
	if err != nil {
		return 0, fmt.Errorf("read fetch state: %w", err)
	}
	return len(lines), nil
}

// rewrite drops every line keyed by fp, lets add extend the rest, trims to
// the bound and atomically replaces the file.
func (s *Store) rewrite(fp string, add func(kept []string) []string) error {
	lines, err := fsutil.ReadLines(s.path)
	if err != nil {
		return fmt.Errorf("read fetch state: %w", err)
	}

	kept := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		if key, _, _ := parseLine(l); key == fp {
			continue
		}
		kept = append(kept, l)
	}

	kept = add(kept)
	if len(kept) > s.maxEntries {
		kept = kept[len(kept)-s.maxEntries:]
	}

	if err := fsutil.WriteLines(s.path, kept); err != nil {
		return fmt.Errorf("write fetch state: %w", err)
	}
	return nil
}

func parseLine(line string) (string, Record, bool) {
	parts := strings.Split(line, "\t")
	key := parts[0]
	if len(parts) < 2 || len(parts) > 3 {
		return key, Record{}, false
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 1 {
		return key, Record{}, false
	}
	rec := Record{Page: page}
	if len(parts) == 3 {
		rec.Seed = parts[2]
	}
	return key, rec, true
}

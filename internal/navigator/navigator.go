// Package navigator moves through a scope's wallpaper history and re-applies
// the entry under the cursor.
package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/history"
	"github.com/darkawower/wallhop/internal/scope"
)

var (
	// ErrAtOldest indicates the cursor is already on the oldest entry.
	ErrAtOldest = errors.New("already at the oldest wallpaper")

	// ErrAtNewest indicates the cursor is already on the newest entry.
	ErrAtNewest = errors.New("already at the newest wallpaper")

	// ErrHistoryExhausted indicates no live file was found in the direction
	// of travel.
	ErrHistoryExhausted = errors.New("no remaining wallpaper in history exists on disk")
)

// Direction of travel through history.
type Direction int

const (
	// Back moves towards older entries.
	Back Direction = 1
	// Forward moves towards newer entries.
	Forward Direction = -1
)

func (d Direction) String() string {
	if d == Back {
		return "back"
	}
	return "forward"
}

// Applier sets a wallpaper for a scope.
type Applier interface {
	Apply(ctx context.Context, path string, sc scope.Scope) error
}

// History is the part of the history store the navigator uses.
type History interface {
	Length(sc scope.Scope) (int, error)
	Read(sc scope.Scope, index int) (string, error)
	Cursor(sc scope.Scope) (int, error)
	SetCursor(sc scope.Scope, n int) error
}

// Step is a completed move.
type Step struct {
	Path    string
	Cursor  int
	Skipped int
}

// Navigator moves a scope's cursor.
type Navigator struct {
	history History
	applier Applier
	exists  func(path string) bool
}

// New creates a navigator. exists reports whether a history entry's file is
// still on disk.
func New(h History, a Applier, exists func(path string) bool) *Navigator {
	return &Navigator{history: h, applier: a, exists: exists}
}

// Back applies the previous (older) wallpaper.
func (n *Navigator) Back(ctx context.Context, sc scope.Scope) (*Step, error) {
	return n.Move(ctx, sc, Back)
}

// Forward applies the next (newer) wallpaper.
func (n *Navigator) Forward(ctx context.Context, sc scope.Scope) (*Step, error) {
	return n.Move(ctx, sc, Forward)
}

// Move steps the cursor in dir, skipping entries whose files are gone. State
// is only written after the wallpaper was applied.
func (n *Navigator) Move(ctx context.Context, sc scope.Scope, dir Direction) (*Step, error) {
	length, err := n.history.Length(sc)
	if err != nil {
		return nil, err
	}
	cur, err := n.history.Cursor(sc)
	if err != nil {
		return nil, err
	}

	next := cur
	skipped := 0
	for attempt := 0; attempt < length; attempt++ {
		next += int(dir)
		if next < 0 || next >= length {
			if skipped > 0 {
				return nil, fmt.Errorf("%w (%s, skipped %d)", ErrHistoryExhausted, sc, skipped)
			}
			if dir == Back {
				return nil, ErrAtOldest
			}
			return nil, ErrAtNewest
		}

		path, err := n.history.Read(sc, next)
		if err != nil {
			return nil, err
		}
		if !n.exists(path) {
			log.Debug().Str("scope", sc.Key()).Int("cursor", next).Str("path", path).Msg("skipping missing wallpaper")
			skipped++
			continue
		}

		if err := n.applier.Apply(ctx, path, sc); err != nil {
			return nil, fmt.Errorf("apply wallpaper: %w", err)
		}
		if err := n.history.SetCursor(sc, next); err != nil {
			return nil, err
		}

		log.Debug().Str("scope", sc.Key()).Str("direction", dir.String()).Int("cursor", next).Msg("navigated")
		return &Step{Path: path, Cursor: next, Skipped: skipped}, nil
	}

	return nil, fmt.Errorf("%w (%s)", ErrHistoryExhausted, sc)
}

var _ History = (*history.Store)(nil)

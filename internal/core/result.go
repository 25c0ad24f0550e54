// Package core ties the stores, sources and desktop sink together into the
// operations wallhop exposes.
package core

import (
	"time"

	"github.com/darkawower/wallhop/internal/scope"
)

// WallpaperResult describes a wallpaper that was just applied.
type WallpaperResult struct {
	// Path is the absolute path to the applied image.
	Path string

	Scope scope.Scope

	// Source is "wallhaven" or "local".
	Source string

	// ID is the wallhaven id, empty for local images.
	ID         string
	Label      string
	Resolution string
	Size       int64

	SetAt time.Time
}

// NavigationResult describes a move through history.
type NavigationResult struct {
	WallpaperResult

	// Cursor is the new position, 0 being the newest entry.
	Cursor int

	// Length is the number of entries in the scope's history.
	Length int

	// Skipped counts entries passed over because their file was gone.
	Skipped int
}

// CopyResult describes a copied wallpaper.
type CopyResult struct {
	Source string
	Dest   string
	Size   int64
}

// CleanupResult describes a history cleanup.
type CleanupResult struct {
	Scope   scope.Scope
	Removed int
	Kept    int
}

// Setting is one resolved configuration value.
type Setting struct {
	Key   string
	Value string
}

// Package wallpaper applies image files to the desktop.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
)

// ErrMissingFile is returned when the image to apply does not exist.
var ErrMissingFile = errors.New("wallpaper file not found")

// Applier resolves paths and hands them to the desktop sink.
type Applier struct {
	sink platform.Sink
}

func NewApplier(sink platform.Sink) *Applier {
	return &Applier{sink: sink}
}

// Desktop returns the name of the underlying sink.
func (a *Applier) Desktop() string {
	return a.sink.Name()
}

// Check verifies the desktop's tools are installed, so a command can fail
// before it downloads or records anything.
func (a *Applier) Check() error {
	if err := a.sink.Check(); err != nil {
		return fmt.Errorf("%s: %w", a.sink.Name(), err)
	}
	return nil
}

// Apply sets path as the wallpaper for sc.
func (a *Applier) Apply(ctx context.Context, path string, sc scope.Scope) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingFile, absPath)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingFile, absPath)
	}

	if err := a.sink.Apply(ctx, absPath, sc); err != nil {
		return err
	}

	log.Debug().Str("desktop", a.sink.Name()).Stringer("scope", sc).Str("path", absPath).Msg("wallpaper applied")
	return nil
}

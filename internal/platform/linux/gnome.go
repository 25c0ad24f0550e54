package linux

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
)

const (
	gnomeSchema    = "org.gnome.desktop.background"
	cinnamonSchema = "org.cinnamon.desktop.background"
	mateSchema     = "org.mate.background"
)

// GNOME sets the wallpaper with gsettings. It also covers Cinnamon, which
// uses the same keys under its own schema. Neither supports per-monitor
// wallpapers, so every scope applies to all monitors.
type GNOME struct {
	runner platform.Runner
	schema string
	dark   bool
}

func NewGNOME(r platform.Runner, schema string, dark bool) *GNOME {
	return &GNOME{runner: r, schema: schema, dark: dark}
}

func (s *GNOME) Name() string {
	if s.schema == cinnamonSchema {
		return "cinnamon"
	}
	return "gnome"
}

func (s *GNOME) Check() error {
	_, err := platform.FirstAvailable(s.runner, "gsettings")
	return err
}

func (s *GNOME) Apply(ctx context.Context, path string, sc scope.Scope) error {
	if err := s.Check(); err != nil {
		return err
	}
	if !sc.IsGlobal() {
		log.Debug().Str("desktop", s.Name()).Stringer("scope", sc).Msg("per-monitor wallpaper not supported, applying to all monitors")
	}

	uri := fileURI(path)
	if _, err := s.runner.Run(ctx, "gsettings", "set", s.schema, "picture-uri", uri); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}

	// picture-uri-dark only exists on GNOME 42 and later.
	if s.dark {
		if _, err := s.runner.Run(ctx, "gsettings", "set", s.schema, "picture-uri-dark", uri); err != nil {
			log.Debug().Err(err).Msg("failed to set dark wallpaper")
		}
	}
	return nil
}

// MATE sets the wallpaper with gsettings under the MATE schema.
type MATE struct {
	runner platform.Runner
}

func NewMATE(r platform.Runner) *MATE {
	return &MATE{runner: r}
}

func (s *MATE) Name() string {
	return "mate"
}

func (s *MATE) Check() error {
	_, err := platform.FirstAvailable(s.runner, "gsettings")
	return err
}

func (s *MATE) Apply(ctx context.Context, path string, sc scope.Scope) error {
	if err := s.Check(); err != nil {
		return err
	}
	if _, err := s.runner.Run(ctx, "gsettings", "set", mateSchema, "picture-filename", path); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}
	return nil
}

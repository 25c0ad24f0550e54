package linux

import (
	"context"
	"fmt"

	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
)

// LXQt sets the wallpaper through pcmanfm-qt.
type LXQt struct {
	runner platform.Runner
}

func NewLXQt(r platform.Runner) *LXQt {
	return &LXQt{runner: r}
}

func (s *LXQt) Name() string {
	return "lxqt"
}

func (s *LXQt) Check() error {
	_, err := platform.FirstAvailable(s.runner, "pcmanfm-qt")
	return err
}

func (s *LXQt) Apply(ctx context.Context, path string, sc scope.Scope) error {
	if err := s.Check(); err != nil {
		return err
	}
	if _, err := s.runner.Run(ctx, "pcmanfm-qt", "--set-wallpaper", path); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}
	return nil
}

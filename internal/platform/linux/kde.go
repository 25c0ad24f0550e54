package linux

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
)

// KDE sets the wallpaper through the plasmashell scripting interface.
type KDE struct {
	runner platform.Runner
}

func NewKDE(r platform.Runner) *KDE {
	return &KDE{runner: r}
}

func (s *KDE) Name() string {
	return "kde"
}

func (s *KDE) qdbus() (string, error) {
	return platform.FirstAvailable(s.runner, "qdbus6", "qdbus", "qdbus-qt5")
}

func (s *KDE) Check() error {
	_, err := s.qdbus()
	return err
}

func (s *KDE) Apply(ctx context.Context, path string, sc scope.Scope) error {
	qdbus, err := s.qdbus()
	if err != nil {
		return err
	}

	script, err := kdeScript(path, sc)
	if err != nil {
		return err
	}

	if _, err := s.runner.Run(ctx, qdbus,
		"org.kde.plasmashell", "/PlasmaShell", "org.kde.PlasmaShell.evaluateScript", script); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}
	return nil
}

// kdeScript builds the plasmashell script. Plasma numbers screens from 0.
func kdeScript(path string, sc scope.Scope) (string, error) {
	uri, err := json.Marshal(fileURI(path))
	if err != nil {
		return "", err
	}

	filter := ""
	if !sc.IsGlobal() {
		filter = fmt.Sprintf("if (d.screen !== %d) { continue; }\n", sc.Index()-1)
	}

	return fmt.Sprintf(`var all = desktops();
for (var i = 0; i < all.length; i++) {
var d = all[i];
%sd.wallpaperPlugin = "org.kde.image";
d.currentConfigGroup = ["Wallpaper", "org.kde.image", "General"];
d.writeConfig("Image", %s);
}`, filter, uri), nil
}

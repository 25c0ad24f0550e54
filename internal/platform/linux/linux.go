// Package linux provides wallpaper sinks for Linux desktop environments.
// Importing it registers every sink with the platform package.
package linux

import "github.com/darkawower/wallhop/internal/platform"

func init() {
	platform.Register(func(r platform.Runner) platform.Sink { return NewKDE(r) },
		"kde", "plasma", "plasmawayland", "plasmax11")
	platform.Register(func(r platform.Runner) platform.Sink { return NewGNOME(r, gnomeSchema, true) },
		"gnome", "ubuntu", "unity", "budgie", "budgie-desktop", "pantheon", "gnome-xorg")
	platform.Register(func(r platform.Runner) platform.Sink { return NewGNOME(r, cinnamonSchema, false) },
		"cinnamon")
	platform.Register(func(r platform.Runner) platform.Sink { return NewXFCE(r) },
		"xfce", "xfce4", "xubuntu")
	platform.Register(func(r platform.Runner) platform.Sink { return NewMATE(r) },
		"mate")
	platform.Register(func(r platform.Runner) platform.Sink { return NewLXQt(r) },
		"lxqt", "lubuntu")
}

func fileURI(path string) string {
	return "file://" + path
}

// Package platform abstracts the desktop environment: applying wallpapers and
// showing notifications.
package platform

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/darkawower/wallhop/internal/scope"
)

var (
	ErrUnsupported       = errors.New("desktop environment not supported")
	ErrMissingDependency = errors.New("required command not found")
	ErrMonitorOutOfRange = errors.New("monitor index out of range")
)

// Sink applies a wallpaper on one desktop environment.
type Sink interface {
	// Name returns the desktop identifier (e.g. "kde", "gnome").
	Name() string

	// Check reports ErrMissingDependency when the commands Apply needs are
	// not installed.
	Check() error

	// Apply sets path as the wallpaper for sc. path must be absolute.
	Apply(ctx context.Context, path string, sc scope.Scope) error
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w (output: %s)", name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// FirstAvailable returns the first of names found on PATH.
func FirstAvailable(r Runner, names ...string) (string, error) {
	for _, name := range names {
		if _, err := r.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingDependency, strings.Join(names, " or "))
}

package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Builder creates a sink that runs its commands through r.
type Builder func(r Runner) Sink

var (
	registry     = make(map[string]Builder)
	registryLock sync.RWMutex
)

// Register makes a sink available under every name in names. Names are
// matched case-insensitively against XDG_CURRENT_DESKTOP and DESKTOP_SESSION.
func Register(builder Builder, names ...string) {
	registryLock.Lock()
	defer registryLock.Unlock()
	for _, name := range names {
		registry[normalize(name)] = builder
	}
}

// Registered lists every registered desktop name.
func Registered() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns the sink for the running desktop. A non-empty override
// bypasses detection.
func Detect(override string, getenv func(string) string, r Runner) (Sink, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	if override != "" {
		if builder, ok := registry[normalize(override)]; ok {
			return builder(r), nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, override)
	}

	var candidates []string
	candidates = append(candidates, strings.Split(getenv("XDG_CURRENT_DESKTOP"), ":")...)
	candidates = append(candidates, getenv("DESKTOP_SESSION"))

	for _, name := range candidates {
		if builder, ok := registry[normalize(name)]; ok {
			return builder(r), nil
		}
	}

	desktop := getenv("XDG_CURRENT_DESKTOP")
	if desktop == "" {
		desktop = getenv("DESKTOP_SESSION")
	}
	if desktop == "" {
		desktop = "unknown"
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, desktop)
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(name, "x-")
}

package linux

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
)

const xfceChannel = "xfce4-desktop"

// XFCE sets the wallpaper through xfconf. Every monitor and workspace has its
// own last-image property.
type XFCE struct {
	runner platform.Runner
}

func NewXFCE(r platform.Runner) *XFCE {
	return &XFCE{runner: r}
}

func (s *XFCE) Name() string {
	return "xfce"
}

func (s *XFCE) Check() error {
	_, err := platform.FirstAvailable(s.runner, "xfconf-query")
	return err
}

func (s *XFCE) Apply(ctx context.Context, path string, sc scope.Scope) error {
	if err := s.Check(); err != nil {
		return err
	}

	out, err := s.runner.Run(ctx, "xfconf-query", "-c", xfceChannel, "-l")
	if err != nil {
		return fmt.Errorf("failed to list backdrop properties: %w", err)
	}

	props, err := selectBackdrops(out, sc)
	if err != nil {
		return err
	}

	for _, prop := range props {
		if _, err := s.runner.Run(ctx, "xfconf-query", "-c", xfceChannel, "-p", prop, "-s", path); err != nil {
			return fmt.Errorf("failed to set %s: %w", prop, err)
		}
	}
	return nil
}

// selectBackdrops picks the last-image properties for sc. Monitors are
// numbered in the order xfconf lists them.
func selectBackdrops(listing []byte, sc scope.Scope) ([]string, error) {
	var (
		order     []string
		byMonitor = make(map[string][]string)
	)

	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		prop := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(prop, "/backdrop/") || !strings.HasSuffix(prop, "/last-image") {
			continue
		}
		monitor := backdropMonitor(prop)
		if _, seen := byMonitor[monitor]; !seen {
			order = append(order, monitor)
		}
		byMonitor[monitor] = append(byMonitor[monitor], prop)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("no backdrop properties found in %s", xfceChannel)
	}

	if sc.IsGlobal() {
		var all []string
		for _, m := range order {
			all = append(all, byMonitor[m]...)
		}
		return all, nil
	}

	if sc.Index() > len(order) {
		return nil, fmt.Errorf("%w: %s (found %d)", platform.ErrMonitorOutOfRange, sc, len(order))
	}
	return byMonitor[order[sc.Index()-1]], nil
}

// backdropMonitor returns the screen/monitor part of a property path, e.g.
// "screen0/monitorHDMI-1" for /backdrop/screen0/monitorHDMI-1/workspace0/last-image.
func backdropMonitor(prop string) string {
	parts := strings.Split(strings.TrimPrefix(prop, "/backdrop/"), "/")
	if len(parts) < 2 {
		return prop
	}
	return parts[0] + "/" + parts[1]
}

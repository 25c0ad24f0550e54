package linux

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkawower/wallhop/internal/platform"
	"github.com/darkawower/wallhop/internal/scope"
)

type fakeRunner struct {
	available map[string]bool
	outputs   map[string]string
	failOn    string
	calls     [][]string
}

func newRunner(cmds ...string) *fakeRunner {
	r := &fakeRunner{available: map[string]bool{}, outputs: map[string]string{}}
	for _, c := range cmds {
		r.available[c] = true
	}
	return r
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := append([]string{name}, args...)
	r.calls = append(r.calls, call)
	line := strings.Join(call, " ")
	if r.failOn != "" && strings.Contains(line, r.failOn) {
		return nil, errors.New("command failed")
	}
	return []byte(r.outputs[line]), nil
}

func (r *fakeRunner) LookPath(name string) (string, error) {
	if r.available[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func TestDetect_Registered(t *testing.T) {
	tests := []struct {
		desktop string
		want    string
	}{
		{"KDE", "kde"},
		{"ubuntu:GNOME", "gnome"},
		{"X-Cinnamon", "cinnamon"},
		{"XFCE", "xfce"},
		{"MATE", "mate"},
		{"LXQt", "lxqt"},
	}

	for _, tt := range tests {
		t.Run(tt.desktop, func(t *testing.T) {
			getenv := func(k string) string {
				if k == "XDG_CURRENT_DESKTOP" {
					return tt.desktop
				}
				return ""
			}
			sink, err := platform.Detect("", getenv, newRunner())
			require.NoError(t, err)
			assert.Equal(t, tt.want, sink.Name())
		})
	}
}

func TestKDE_Apply(t *testing.T) {
	t.Run("single monitor", func(t *testing.T) {
		r := newRunner("qdbus")
		require.NoError(t, NewKDE(r).Apply(context.Background(), "/pics/a b.jpg", scope.Monitor(2)))

		require.Len(t, r.calls, 1)
		call := r.calls[0]
		assert.Equal(t, []string{"qdbus", "org.kde.plasmashell", "/PlasmaShell", "org.kde.PlasmaShell.evaluateScript"}, call[:4])
		assert.Contains(t, call[4], `d.screen !== 1`)
		assert.Contains(t, call[4], `"file:///pics/a b.jpg"`)
	})

	t.Run("all monitors prefers qdbus6", func(t *testing.T) {
		r := newRunner("qdbus6", "qdbus")
		require.NoError(t, NewKDE(r).Apply(context.Background(), "/pics/a.jpg", scope.Global))

		assert.Equal(t, "qdbus6", r.calls[0][0])
		assert.NotContains(t, r.calls[0][4], "d.screen")
	})

	t.Run("quotes in path are escaped", func(t *testing.T) {
		script, err := kdeScript(`/pics/"x".jpg`, scope.Global)
		require.NoError(t, err)
		assert.Contains(t, script, `"file:///pics/\"x\".jpg"`)
	})

	t.Run("missing qdbus", func(t *testing.T) {
		err := NewKDE(newRunner()).Apply(context.Background(), "/pics/a.jpg", scope.Global)
		assert.ErrorIs(t, err, platform.ErrMissingDependency)
	})
}

func TestGNOME_Apply(t *testing.T) {
	t.Run("gnome sets light and dark", func(t *testing.T) {
		r := newRunner("gsettings")
		require.NoError(t, NewGNOME(r, gnomeSchema, true).Apply(context.Background(), "/pics/a.jpg", scope.Global))

		assert.Equal(t, [][]string{
			{"gsettings", "set", gnomeSchema, "picture-uri", "file:///pics/a.jpg"},
			{"gsettings", "set", gnomeSchema, "picture-uri-dark", "file:///pics/a.jpg"},
		}, r.calls)
	})

	t.Run("dark key failure is ignored", func(t *testing.T) {
		r := newRunner("gsettings")
		r.failOn = "picture-uri-dark"
		assert.NoError(t, NewGNOME(r, gnomeSchema, true).Apply(context.Background(), "/pics/a.jpg", scope.Monitor(1)))
	})

	t.Run("cinnamon schema", func(t *testing.T) {
		r := newRunner("gsettings")
		sink := NewGNOME(r, cinnamonSchema, false)
		require.NoError(t, sink.Apply(context.Background(), "/pics/a.jpg", scope.Global))

		assert.Equal(t, "cinnamon", sink.Name())
		assert.Equal(t, [][]string{{"gsettings", "set", cinnamonSchema, "picture-uri", "file:///pics/a.jpg"}}, r.calls)
	})

	t.Run("primary key failure", func(t *testing.T) {
		r := newRunner("gsettings")
		r.failOn = "picture-uri "
		assert.Error(t, NewGNOME(r, gnomeSchema, true).Apply(context.Background(), "/pics/a.jpg", scope.Global))
	})
}

func TestMATEAndLXQt_Apply(t *testing.T) {
	r := newRunner("gsettings", "pcmanfm-qt")

	require.NoError(t, NewMATE(r).Apply(context.Background(), "/pics/a.jpg", scope.Global))
	require.NoError(t, NewLXQt(r).Apply(context.Background(), "/pics/b.jpg", scope.Global))

	assert.Equal(t, [][]string{
		{"gsettings", "set", mateSchema, "picture-filename", "/pics/a.jpg"},
		{"pcmanfm-qt", "--set-wallpaper", "/pics/b.jpg"},
	}, r.calls)
}

const xfceListing = `/backdrop/screen0/monitorHDMI-1/workspace0/color-style
/backdrop/screen0/monitorHDMI-1/workspace0/last-image
/backdrop/screen0/monitorHDMI-1/workspace1/last-image
/backdrop/screen0/monitorDP-2/workspace0/last-image
/desktop-icons/style
`

func TestXFCE_Apply(t *testing.T) {
	listCmd := "xfconf-query -c xfce4-desktop -l"

	t.Run("second monitor", func(t *testing.T) {
		r := newRunner("xfconf-query")
		r.outputs[listCmd] = xfceListing

		require.NoError(t, NewXFCE(r).Apply(context.Background(), "/pics/a.jpg", scope.Monitor(2)))
		require.Len(t, r.calls, 2)
		assert.Equal(t, []string{"xfconf-query", "-c", "xfce4-desktop", "-p",
			"/backdrop/screen0/monitorDP-2/workspace0/last-image", "-s", "/pics/a.jpg"}, r.calls[1])
	})

	t.Run("all monitors", func(t *testing.T) {
		r := newRunner("xfconf-query")
		r.outputs[listCmd] = xfceListing

		require.NoError(t, NewXFCE(r).Apply(context.Background(), "/pics/a.jpg", scope.Global))
		assert.Len(t, r.calls, 4)
	})

	t.Run("monitor out of range", func(t *testing.T) {
		r := newRunner("xfconf-query")
		r.outputs[listCmd] = xfceListing

		err := NewXFCE(r).Apply(context.Background(), "/pics/a.jpg", scope.Monitor(3))
		assert.ErrorIs(t, err, platform.ErrMonitorOutOfRange)
	})

	t.Run("no backdrops", func(t *testing.T) {
		r := newRunner("xfconf-query")
		err := NewXFCE(r).Apply(context.Background(), "/pics/a.jpg", scope.Global)
		assert.Error(t, err)
	})
}

func TestSinks_Check(t *testing.T) {
	tests := []struct {
		name    string
		sink    func(r platform.Runner) platform.Sink
		command string
	}{
		{"kde", func(r platform.Runner) platform.Sink { return NewKDE(r) }, "qdbus-qt5"},
		{"gnome", func(r platform.Runner) platform.Sink { return NewGNOME(r, gnomeSchema, true) }, "gsettings"},
		{"cinnamon", func(r platform.Runner) platform.Sink { return NewGNOME(r, cinnamonSchema, false) }, "gsettings"},
		{"xfce", func(r platform.Runner) platform.Sink { return NewXFCE(r) }, "xfconf-query"},
		{"mate", func(r platform.Runner) platform.Sink { return NewMATE(r) }, "gsettings"},
		{"lxqt", func(r platform.Runner) platform.Sink { return NewLXQt(r) }, "pcmanfm-qt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := newRunner()
			assert.ErrorIs(t, tt.sink(missing).Check(), platform.ErrMissingDependency)
			assert.Empty(t, missing.calls)

			assert.NoError(t, tt.sink(newRunner(tt.command)).Check())
		})
	}
}

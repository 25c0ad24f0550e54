package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkawower/wallhop/internal/cache"
	"github.com/darkawower/wallhop/internal/config"
	"github.com/darkawower/wallhop/internal/datasource"
	"github.com/darkawower/wallhop/internal/history"
	"github.com/darkawower/wallhop/internal/navigator"
	"github.com/darkawower/wallhop/internal/scope"
	"github.com/darkawower/wallhop/internal/wallpaper"
)

type applied struct {
	path  string
	scope scope.Scope
}

type fakeApplier struct {
	calls []applied
	err   error
}

func (a *fakeApplier) Apply(_ context.Context, path string, sc scope.Scope) error {
	if a.err != nil {
		return a.err
	}
	a.calls = append(a.calls, applied{path, sc})
	return nil
}

type fakeFetcher struct {
	images []*datasource.Image
	err    error
}

func (f *fakeFetcher) Fetch(context.Context) (*datasource.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	img := f.images[0]
	f.images = f.images[1:]
	return img, nil
}

type fakePicker struct {
	image    *datasource.Image
	excluded []string
}

func (p *fakePicker) PickRandom(_ context.Context, exclude string) (*datasource.Image, error) {
	p.excluded = append(p.excluded, exclude)
	if p.image == nil {
		return nil, datasource.ErrNoImages
	}
	return p.image, nil
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.State.Dir = filepath.Join(dir, "state")
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Copy.Dir = filepath.Join(dir, "saved")
	cfg.Local.Dir = filepath.Join(dir, "local")
	cfg.Lock.Dir = filepath.Join(dir, "run")
	cfg.History.MaxEntries = 5
	return cfg
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("image-bytes"), 0o644))
	return p
}

func TestEngine_Next(t *testing.T) {
	cfg := testConfig(t)
	a := &fakeApplier{}
	img1 := writeImage(t, cfg.Cache.Dir, cache.FileName("aaa111", "forest", ".jpg"))
	img2 := writeImage(t, cfg.Cache.Dir, cache.FileName("bbb222", "forest", ".jpg"))

	fetcher := &fakeFetcher{images: []*datasource.Image{
		{Path: img1, Source: datasource.SourceWallhaven, ID: "aaa111", Label: "forest", Size: 11},
		{Path: img2, Source: datasource.SourceWallhaven, ID: "bbb222", Label: "forest", Size: 11},
	}}
	e := New(cfg, a, WithRemote(fetcher), WithClock(func() time.Time { return fixedTime }))

	res, err := e.Next(context.Background(), scope.Monitor(1))
	require.NoError(t, err)
	assert.Equal(t, img1, res.Path)
	assert.Equal(t, "aaa111", res.ID)
	assert.Equal(t, fixedTime, res.SetAt)

	_, err = e.Next(context.Background(), scope.Monitor(1))
	require.NoError(t, err)

	entries, err := e.History().Entries(scope.Monitor(1))
	require.NoError(t, err)
	assert.Equal(t, []string{img2, img1}, entries, "newest first")

	_, err = e.History().Entries(scope.Global)
	assert.ErrorIs(t, err, history.ErrNoHistory, "scopes are independent")

	assert.Equal(t, []applied{{img1, scope.Monitor(1)}, {img2, scope.Monitor(1)}}, a.calls)
}

func TestEngine_Next_Errors(t *testing.T) {
	t.Run("fetch error leaves history alone", func(t *testing.T) {
		cfg := testConfig(t)
		e := New(cfg, &fakeApplier{}, WithRemote(&fakeFetcher{err: cache.ErrAllDuplicate}))

		_, err := e.Next(context.Background(), scope.Global)
		require.ErrorIs(t, err, cache.ErrAllDuplicate)
		assert.True(t, Expected(err))

		_, err = e.History().Length(scope.Global)
		assert.ErrorIs(t, err, history.ErrNoHistory)
	})

	t.Run("apply failure is not recorded", func(t *testing.T) {
		cfg := testConfig(t)
		img := writeImage(t, cfg.Cache.Dir, "wallhaven-x.jpg")
		boom := errors.New("boom")
		e := New(cfg, &fakeApplier{err: boom}, WithRemote(&fakeFetcher{images: []*datasource.Image{{Path: img}}}))

		_, err := e.Next(context.Background(), scope.Global)
		require.ErrorIs(t, err, boom)

		_, err = e.History().Length(scope.Global)
		assert.ErrorIs(t, err, history.ErrNoHistory)
	})
}

func TestEngine_Next_FallsBackToLocal(t *testing.T) {
	cfg := testConfig(t)
	img := writeImage(t, cfg.Local.Dir, "a.png")
	a := &fakeApplier{}
	picker := &fakePicker{image: &datasource.Image{Path: img, Source: datasource.SourceLocal}}

	e := New(cfg, a, WithRemote(nil), WithLocal(picker))

	res, err := e.Next(context.Background(), scope.Global)
	require.NoError(t, err)
	assert.Equal(t, img, res.Path)
	assert.Equal(t, datasource.SourceLocal, res.Source)
	assert.Equal(t, []string{""}, picker.excluded)
}

func TestEngine_LocalRandom(t *testing.T) {
	t.Run("excludes the current wallpaper", func(t *testing.T) {
		cfg := testConfig(t)
		first := writeImage(t, cfg.Local.Dir, "a.png")
		second := writeImage(t, cfg.Local.Dir, "b.png")

		picker := &fakePicker{image: &datasource.Image{Path: first, Source: datasource.SourceLocal}}
		e := New(cfg, &fakeApplier{}, WithLocal(picker))

		_, err := e.LocalRandom(context.Background(), scope.Global)
		require.NoError(t, err)

		picker.image = &datasource.Image{Path: second, Source: datasource.SourceLocal}
		_, err = e.LocalRandom(context.Background(), scope.Global)
		require.NoError(t, err)

		assert.Equal(t, []string{"", first}, picker.excluded)
	})

	t.Run("no local folder", func(t *testing.T) {
		e := New(testConfig(t), &fakeApplier{}, WithLocal(nil))
		_, err := e.LocalRandom(context.Background(), scope.Global)
		assert.ErrorIs(t, err, ErrNoLocalDir)
	})

	t.Run("empty folder", func(t *testing.T) {
		e := New(testConfig(t), &fakeApplier{}, WithLocal(&fakePicker{}))
		_, err := e.LocalRandom(context.Background(), scope.Global)
		assert.ErrorIs(t, err, datasource.ErrNoImages)
		assert.Equal(t, 1, ExitCode(err))
	})
}

func TestEngine_BackForward(t *testing.T) {
	cfg := testConfig(t)
	a := &fakeApplier{}
	e := New(cfg, a, WithRemote(nil))

	var paths []string
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		p := writeImage(t, cfg.Local.Dir, name)
		paths = append(paths, p)
		require.NoError(t, e.History().Append(scope.Global, p))
	}

	_, err := e.Forward(context.Background(), scope.Global)
	require.ErrorIs(t, err, navigator.ErrAtNewest)
	assert.True(t, Expected(err))

	res, err := e.Back(context.Background(), scope.Global)
	require.NoError(t, err)
	assert.Equal(t, paths[1], res.Path)
	assert.Equal(t, 1, res.Cursor)
	assert.Equal(t, 3, res.Length)
	assert.Equal(t, int64(len("image-bytes")), res.Size)

	require.NoError(t, os.Remove(paths[0]))

	_, err = e.Back(context.Background(), scope.Global)
	require.ErrorIs(t, err, navigator.ErrHistoryExhausted)
	assert.Equal(t, 1, ExitCode(err))

	res, err = e.Forward(context.Background(), scope.Global)
	require.NoError(t, err)
	assert.Equal(t, paths[2], res.Path)
	assert.Equal(t, 0, res.Cursor)

	_, err = e.Back(context.Background(), scope.Monitor(2))
	assert.ErrorIs(t, err, history.ErrNoHistory)
}

func TestEngine_Copy(t *testing.T) {
	cfg := testConfig(t)
	e := New(cfg, &fakeApplier{}, WithRemote(nil))

	_, err := e.Copy(scope.Global)
	require.ErrorIs(t, err, history.ErrNoHistory)

	src := writeImage(t, cfg.Cache.Dir, "wallhaven-abc_forest.jpg")
	require.NoError(t, e.History().Append(scope.Global, src))

	res, err := e.Copy(scope.Global)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Copy.Dir, "wallhaven-abc_forest.jpg"), res.Dest)

	data, err := os.ReadFile(res.Dest)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, os.Remove(src))
	_, err = e.Copy(scope.Global)
	assert.ErrorIs(t, err, wallpaper.ErrMissingFile)
}

func TestEngine_Cleanup(t *testing.T) {
	cfg := testConfig(t)
	e := New(cfg, &fakeApplier{}, WithRemote(nil))

	keep := writeImage(t, cfg.Local.Dir, "keep.jpg")
	gone := writeImage(t, cfg.Local.Dir, "gone.jpg")
	require.NoError(t, e.History().Append(scope.Monitor(1), keep))
	require.NoError(t, e.History().Append(scope.Monitor(1), gone))
	require.NoError(t, os.Remove(gone))

	res, err := e.Cleanup(scope.Monitor(1))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 1, res.Kept)

	entries, err := e.History().Entries(scope.Monitor(1))
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, entries)
}

func TestEngine_ShowConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Wallhaven.APIKey = "super-secret"

	settings := New(cfg, &fakeApplier{}).ShowConfig()

	values := make(map[string]string)
	for _, s := range settings {
		values[s.Key] = s.Value
		assert.NotContains(t, s.Value, "super-secret")
	}

	assert.Equal(t, "set", values["api key"])
	assert.Equal(t, "random", values["sorting"])
	assert.Equal(t, cfg.Cache.Dir, values["cache dir"])
	assert.Equal(t, "5", values["history size"])
	assert.Equal(t, "30s", values["timeout"])
	assert.Len(t, values["fingerprint"], 16)
	assert.Equal(t, cfg.FetchStatePath(), values["fetch state file"])
	assert.Equal(t, "0", values["fetch states stored"])
	_, hasTopRange := values["top range"]
	assert.False(t, hasTopRange, "top range only shown for toplist")
}

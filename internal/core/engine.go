package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/config"
	"github.com/darkawower/wallhop/internal/datasource"
	"github.com/darkawower/wallhop/internal/fetchstate"
	"github.com/darkawower/wallhop/internal/fsutil"
	"github.com/darkawower/wallhop/internal/history"
	"github.com/darkawower/wallhop/internal/navigator"
	"github.com/darkawower/wallhop/internal/provider"
	"github.com/darkawower/wallhop/internal/query"
	"github.com/darkawower/wallhop/internal/scope"
	"github.com/darkawower/wallhop/internal/wallpaper"
)

// Fetcher produces a freshly downloaded wallpaper.
type Fetcher interface {
	Fetch(ctx context.Context) (*datasource.Image, error)
}

// Picker picks an existing wallpaper other than exclude.
type Picker interface {
	PickRandom(ctx context.Context, exclude string) (*datasource.Image, error)
}

// Engine is the main wallpaper management engine.
type Engine struct {
	config  *config.Config
	history *history.Store
	state   *fetchstate.Store
	applier navigator.Applier
	nav     *navigator.Navigator
	remote  Fetcher
	local   Picker
	now     func() time.Time
}

// Option is a function that configures the Engine.
type Option func(*Engine)

// WithRemote replaces the wallhaven source. nil disables remote fetching.
func WithRemote(f Fetcher) Option {
	return func(e *Engine) {
		e.remote = f
	}
}

// WithLocal replaces the local folder source. nil disables it.
func WithLocal(p Picker) Option {
	return func(e *Engine) {
		e.local = p
	}
}

// WithClock sets the time source for results.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine for a resolved, validated config.
func New(cfg *config.Config, applier navigator.Applier, opts ...Option) *Engine {
	e := &Engine{
		config:  cfg,
		history: history.NewStore(cfg.HistoryDir(), cfg.History.MaxEntries),
		applier: applier,
		now:     time.Now,
	}

	if cfg.Wallhaven.Enabled {
		api := provider.NewWallhaven(provider.Options{
			BaseURL: cfg.Wallhaven.BaseURL,
			APIKey:  cfg.Wallhaven.APIKey,
			Timeout: cfg.Timeout(),
		})
		e.state = fetchstate.NewStore(cfg.FetchStatePath(), cfg.State.FetchStateLimit)
		e.remote = datasource.NewRemoteSource(api, e.state, datasource.RemoteOptions{
			Params:   cfg.Search,
			APIKey:   cfg.Wallhaven.APIKey,
			CacheDir: cfg.Cache.Dir,
			KeepLast: cfg.Cache.KeepLast,
		})
	}
	if cfg.Local.Dir != "" {
		e.local = datasource.NewLocalSource(cfg.Local.Dir, cfg.Local.Recursive)
	}

	for _, opt := range opts {
		opt(e)
	}

	e.nav = navigator.New(e.history, e.applier, fsutil.Exists)
	return e
}

// History exposes the history store.
func (e *Engine) History() *history.Store {
	return e.history
}

// Next fetches a new wallpaper from wallhaven and applies it. Without a
// remote source it picks from the local folder instead.
func (e *Engine) Next(ctx context.Context, sc scope.Scope) (*WallpaperResult, error) {
	if e.remote == nil {
		log.Debug().Msg("remote source disabled, using local folder")
		return e.LocalRandom(ctx, sc)
	}

	img, err := e.remote.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, img, sc)
}

// LocalRandom applies a random image from the local folder, avoiding the
// scope's current wallpaper.
func (e *Engine) LocalRandom(ctx context.Context, sc scope.Scope) (*WallpaperResult, error) {
	if e.local == nil {
		return nil, ErrNoLocalDir
	}

	current, err := e.history.Current(sc)
	if err != nil && !errors.Is(err, history.ErrNoHistory) && !errors.Is(err, history.ErrNotFound) {
		return nil, err
	}

	img, err := e.local.PickRandom(ctx, current)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, img, sc)
}

func (e *Engine) apply(ctx context.Context, img *datasource.Image, sc scope.Scope) (*WallpaperResult, error) {
	path, err := filepath.Abs(img.Path)
	if err != nil {
		return nil, err
	}

	if err := e.applier.Apply(ctx, path, sc); err != nil {
		return nil, err
	}
	if err := e.history.Append(sc, path); err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}

	return &WallpaperResult{
		Path:       path,
		Scope:      sc,
		Source:     img.Source,
		ID:         img.ID,
		Label:      img.Label,
		Resolution: img.Resolution,
		Size:       img.Size,
		SetAt:      e.now(),
	}, nil
}

// Back re-applies the previous (older) wallpaper of the scope.
func (e *Engine) Back(ctx context.Context, sc scope.Scope) (*NavigationResult, error) {
	return e.move(ctx, sc, navigator.Back)
}

// Forward re-applies the next (newer) wallpaper of the scope.
func (e *Engine) Forward(ctx context.Context, sc scope.Scope) (*NavigationResult, error) {
	return e.move(ctx, sc, navigator.Forward)
}

func (e *Engine) move(ctx context.Context, sc scope.Scope, dir navigator.Direction) (*NavigationResult, error) {
	step, err := e.nav.Move(ctx, sc, dir)
	if err != nil {
		return nil, err
	}

	length, err := e.history.Length(sc)
	if err != nil {
		return nil, err
	}

	res := &NavigationResult{
		WallpaperResult: WallpaperResult{
			Path:   step.Path,
			Scope:  sc,
			Source: datasource.SourceLocal,
			SetAt:  e.now(),
		},
		Cursor:  step.Cursor,
		Length:  length,
		Skipped: step.Skipped,
	}
	if info, err := os.Stat(step.Path); err == nil {
		res.Size = info.Size()
	}
	return res, nil
}

// Copy copies the scope's current wallpaper into the configured copy folder.
func (e *Engine) Copy(sc scope.Scope) (*CopyResult, error) {
	if e.config.Copy.Dir == "" {
		return nil, fmt.Errorf("%w: copy dir is not set", config.ErrInvalid)
	}

	current, err := e.history.Current(sc)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(current)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", wallpaper.ErrMissingFile, current)
	}

	dest := filepath.Join(e.config.Copy.Dir, filepath.Base(current))
	if dest != current {
		if err := fsutil.CopyFile(current, dest); err != nil {
			return nil, fmt.Errorf("failed to copy wallpaper: %w", err)
		}
	}

	log.Info().Str("from", current).Str("to", dest).Str("size", humanize.Bytes(uint64(info.Size()))).Msg("wallpaper copied")
	return &CopyResult{Source: current, Dest: dest, Size: info.Size()}, nil
}

// Cleanup drops history entries whose files are gone.
func (e *Engine) Cleanup(sc scope.Scope) (*CleanupResult, error) {
	report, err := e.history.Cleanup(sc)
	if err != nil {
		return nil, err
	}
	return &CleanupResult{Scope: sc, Removed: report.Removed, Kept: report.Kept}, nil
}

// ShowConfig lists the resolved configuration. The API key is never shown.
func (e *Engine) ShowConfig() []Setting {
	c := e.config
	s := c.Search

	apiKey := "not set"
	if c.Wallhaven.APIKey != "" {
		apiKey = "set"
	}

	settings := []Setting{
		{"config file", orNone(c.ConfigPath())},
		{"wallhaven", enabled(c.Wallhaven.Enabled)},
		{"api key", apiKey},
		{"query", orNone(query.Parse(s.Query).String())},
		{"categories", s.Categories.Bitmask()},
		{"purity", s.Purity.Bitmask()},
		{"sorting", s.Sorting},
		{"order", s.Order},
	}
	if s.Sorting == query.SortToplist {
		settings = append(settings, Setting{"top range", s.TopRange})
	}
	settings = append(settings,
		Setting{"at least", orNone(s.AtLeast)},
		Setting{"resolutions", orNone(strings.Join(s.Resolutions, ", "))},
		Setting{"ratios", orNone(strings.Join(s.Ratios, ", "))},
		Setting{"color", orNone(s.Color)},
		Setting{"fingerprint", query.Fingerprint(s)},
		Setting{"cache dir", c.Cache.Dir},
		Setting{"keep last", keepLast(c.Cache.KeepLast)},
		Setting{"local dir", orNone(c.Local.Dir)},
		Setting{"copy dir", orNone(c.Copy.Dir)},
		Setting{"state dir", c.State.Dir},
		Setting{"history size", strconv.Itoa(e.history.MaxEntries())},
		Setting{"fetch state size", strconv.Itoa(c.State.FetchStateLimit)},
		Setting{"timeout", c.Timeout().String()},
		Setting{"lock dir", c.Lock.Dir},
		Setting{"stale lock after", c.StaleAfter().String()},
		Setting{"min interval", c.MinInterval().String()},
		Setting{"desktop", orAuto(c.Desktop.Name)},
		Setting{"notifications", enabled(c.Desktop.Notify)},
	)

	if e.state != nil {
		settings = append(settings, Setting{"fetch state file", e.state.Path()})
		if n, err := e.state.Len(); err == nil {
			settings = append(settings, Setting{"fetch states stored", strconv.Itoa(n)})
		}
	}
	return settings
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func orAuto(s string) string {
	if s == "" {
		return "auto"
	}
	return s
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func keepLast(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}

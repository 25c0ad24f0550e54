// Package config resolves wallhop's configuration: built-in defaults, then
// the TOML config file, then command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/darkawower/wallhop/internal/fsutil"
	"github.com/darkawower/wallhop/internal/query"
)

// AppName names the config, state and runtime directories.
const AppName = "wallhop"

// ErrInvalid wraps configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

type WallhavenConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type CacheConfig struct {
	Dir      string `toml:"dir"`
	KeepLast int    `toml:"keep_last"`
}

type LocalConfig struct {
	Dir       string `toml:"dir"`
	Recursive bool   `toml:"recursive"`
}

type CopyConfig struct {
	Dir string `toml:"dir"`
}

type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

type StateConfig struct {
	Dir             string `toml:"dir"`
	FetchStateLimit int    `toml:"fetch_state_limit"`
}

type NetworkConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type LockConfig struct {
	Dir                string `toml:"dir"`
	StaleAfterSeconds  int    `toml:"stale_after_seconds"`
	MinIntervalSeconds int    `toml:"min_interval_seconds"`
}

type DesktopConfig struct {
	Name   string `toml:"name"`
	Notify bool   `toml:"notify"`
}

type Config struct {
	Search    query.Params    `toml:"search"`
	Wallhaven WallhavenConfig `toml:"wallhaven"`
	Cache     CacheConfig     `toml:"cache"`
	Local     LocalConfig     `toml:"local"`
	Copy      CopyConfig      `toml:"copy"`
	History   HistoryConfig   `toml:"history"`
	State     StateConfig     `toml:"state"`
	Network   NetworkConfig   `toml:"network"`
	Lock      LockConfig      `toml:"lock"`
	Desktop   DesktopConfig   `toml:"desktop"`

	configPath string
	rawAPIKey  string
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/wallhop.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.toml")
}

func DefaultConfig() *Config {
	pictures := xdg.UserDirs.Pictures

	return &Config{
		Search: query.Params{
			Categories: query.Categories{General: true, Anime: true, People: true},
			Purity:     query.Purity{SFW: true},
			Sorting:    query.SortRandom,
			Order:      "desc",
			TopRange:   "1M",
		},
		Wallhaven: WallhavenConfig{
			Enabled: true,
			APIKey:  "${WALLHAVEN_API_KEY}",
			BaseURL: "https://wallhaven.cc/api/v1",
		},
		Cache: CacheConfig{
			Dir:      filepath.Join(pictures, "wallhaven"),
			KeepLast: 50,
		},
		Local: LocalConfig{
			Dir:       pictures,
			Recursive: true,
		},
		Copy: CopyConfig{
			Dir: filepath.Join(pictures, "saved"),
		},
		History: HistoryConfig{
			MaxEntries: 50,
		},
		State: StateConfig{
			Dir:             filepath.Join(xdg.StateHome, AppName),
			FetchStateLimit: 100,
		},
		Network: NetworkConfig{
			TimeoutSeconds: 30,
		},
		Lock: LockConfig{
			Dir:                filepath.Join(xdg.RuntimeDir, AppName),
			StaleAfterSeconds:  120,
			MinIntervalSeconds: 3,
		},
		Desktop: DesktopConfig{
			Notify: true,
		},
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error. The result is not validated; apply overrides first and then
// call Validate.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = fsutil.ExpandPath(path)

	cfg := DefaultConfig()
	cfg.configPath = path

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.postProcess()
	return cfg, nil
}

func (c *Config) postProcess() {
	c.rawAPIKey = c.Wallhaven.APIKey
	c.Wallhaven.APIKey = expandEnv(c.Wallhaven.APIKey)

	c.Cache.Dir = fsutil.ExpandPath(c.Cache.Dir)
	c.Local.Dir = fsutil.ExpandPath(c.Local.Dir)
	c.Copy.Dir = fsutil.ExpandPath(c.Copy.Dir)
	c.State.Dir = fsutil.ExpandPath(c.State.Dir)
	c.Lock.Dir = fsutil.ExpandPath(c.Lock.Dir)
	c.Search.Color = strings.TrimPrefix(c.Search.Color, "#")
}

// Overrides carries command-line values. Nil fields leave the config as is.
type Overrides struct {
	Query          *string
	Categories     *query.Categories
	Purity         *query.Purity
	Sorting        *string
	Order          *string
	TopRange       *string
	AtLeast        *string
	Resolutions    *[]string
	Ratios         *[]string
	Color          *string
	KeepLast       *int
	TimeoutSeconds *int
	APIKey         *string
	Desktop        *string
}

// Apply layers o over c.
func (c *Config) Apply(o Overrides) {
	setIf(&c.Search.Query, o.Query)
	setIf(&c.Search.Categories, o.Categories)
	setIf(&c.Search.Purity, o.Purity)
	setIf(&c.Search.Sorting, o.Sorting)
	setIf(&c.Search.Order, o.Order)
	setIf(&c.Search.TopRange, o.TopRange)
	setIf(&c.Search.AtLeast, o.AtLeast)
	setIf(&c.Search.Resolutions, o.Resolutions)
	setIf(&c.Search.Ratios, o.Ratios)
	setIf(&c.Cache.KeepLast, o.KeepLast)
	setIf(&c.Network.TimeoutSeconds, o.TimeoutSeconds)
	setIf(&c.Desktop.Name, o.Desktop)
	if o.Color != nil {
		c.Search.Color = strings.TrimPrefix(*o.Color, "#")
	}
	if o.APIKey != nil {
		c.Wallhaven.APIKey = *o.APIKey
		c.rawAPIKey = *o.APIKey
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if c.Cache.KeepLast < 0 {
		return fmt.Errorf("%w: cache keep_last must not be negative", ErrInvalid)
	}
	if c.Network.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: network timeout must be positive", ErrInvalid)
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("%w: history max_entries must be at least 1", ErrInvalid)
	}
	if c.State.FetchStateLimit < 1 {
		return fmt.Errorf("%w: state fetch_state_limit must be at least 1", ErrInvalid)
	}
	if c.Lock.StaleAfterSeconds < 1 || c.Lock.MinIntervalSeconds < 0 {
		return fmt.Errorf("%w: lock timings out of range", ErrInvalid)
	}
	if c.State.Dir == "" || c.Lock.Dir == "" {
		return fmt.Errorf("%w: state and lock directories are required", ErrInvalid)
	}
	if c.Wallhaven.Enabled {
		if c.Cache.Dir == "" {
			return fmt.Errorf("%w: cache dir is required when wallhaven is enabled", ErrInvalid)
		}
		if err := c.Search.Validate(c.Wallhaven.APIKey); err != nil {
			return err
		}
	}
	return nil
}

// Timeout returns the network timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Network.TimeoutSeconds) * time.Second
}

// StaleAfter returns the lock staleness threshold.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Lock.StaleAfterSeconds) * time.Second
}

// MinInterval returns the minimum time between throttled runs.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Lock.MinIntervalSeconds) * time.Second
}

// HistoryDir returns where per-scope history files live.
func (c *Config) HistoryDir() string {
	return filepath.Join(c.State.Dir, "history")
}

// FetchStatePath returns the fetch-state table location.
func (c *Config) FetchStatePath() string {
	return filepath.Join(c.State.Dir, "fetch-state.tsv")
}

func (c *Config) ConfigPath() string {
	return c.configPath
}

// Save writes the configuration to path (or the path it was loaded from).
// The API key is written as configured, before environment expansion.
func (c *Config) Save(path string) error {
	if path == "" {
		path = c.configPath
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	path = fsutil.ExpandPath(path)

	out := *c
	if c.rawAPIKey != "" {
		out.Wallhaven.APIKey = c.rawAPIKey
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the state, lock and cache directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.HistoryDir(), c.Lock.Dir}
	if c.Wallhaven.Enabled {
		dirs = append(dirs, c.Cache.Dir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// expandEnv expands "${VAR}", "${VAR:-default}" and "$VAR" values.
func expandEnv(s string) string {
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		inner := s[2 : len(s)-1]

		if idx := strings.Index(inner, ":-"); idx != -1 {
			if val := os.Getenv(inner[:idx]); val != "" {
				return val
			}
			return inner[idx+2:]
		}

		return os.Getenv(inner)
	}

	if strings.HasPrefix(s, "$") && !strings.Contains(s, " ") {
		return os.Getenv(s[1:])
	}

	return s
}

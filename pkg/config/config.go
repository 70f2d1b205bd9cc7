// Package config loads the ancestral-scribe TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/ancestral-scribe/config.toml (falling
// back to ~/.config). A missing file yields the defaults; every section and
// key is optional.
//
//	[layout]
//	sibling_spacing = 120
//	compact = true
//
//	[viewport]
//	smoothing = 0.25
//	reduced_motion = false
//
//	[store]
//	backend = "sqlite"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/cache"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/overview"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/viewport"
)

const appName = "ancestral-scribe"

// Config holds every configurable setting.
type Config struct {
	Layout   layout.Options  `toml:"layout"`
	Viewport ViewportConfig  `toml:"viewport"`
	Overview overview.Size   `toml:"overview"`
	Store    collapse.Config `toml:"store"`
	Cache    CacheConfig     `toml:"cache"`
	Server   ServerConfig    `toml:"server"`
}

// ViewportConfig controls camera motion in the viewer.
type ViewportConfig struct {
	Smoothing     float64 `toml:"smoothing"`
	ReducedMotion bool    `toml:"reduced_motion"`
	MinScale      float64 `toml:"min_scale"`
	MaxScale      float64 `toml:"max_scale"`
}

// CacheConfig selects the layout/artifact cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // "file", "redis", "none"
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	TTL       string `toml:"ttl"` // Go duration, e.g. "168h"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultOptions(),
		Viewport: ViewportConfig{
			Smoothing: viewport.DefaultSmoothing,
			MinScale:  viewport.MinScale,
			MaxScale:  viewport.MaxScale,
		},
		Overview: overview.DefaultSize(),
		Store:    collapse.Config{Backend: collapse.BackendFile, Dir: filepath.Join(Dir(), "collapsed")},
		Cache:    CacheConfig{Backend: cache.BackendFile, Dir: CacheDir(), TTL: cache.DefaultTTL.String()},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Dir returns the config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// CacheDir returns the cache directory.
func CacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path (Path() when empty) over the defaults. A missing file is
// not an error; a malformed or invalid one is INVALID_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path (Path() when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "", collapse.BackendFile, collapse.BackendMemory, collapse.BackendRedis, collapse.BackendMongo, collapse.BackendSQLite:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend %q is not one of file, memory, redis, mongo, sqlite", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q is not one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.ttl")
		}
	}
	if c.Viewport.Smoothing < 0 || c.Viewport.Smoothing > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.smoothing must be in [0,1], got %v", c.Viewport.Smoothing)
	}
	if c.Viewport.MinScale > 0 && c.Viewport.MaxScale > 0 && c.Viewport.MinScale > c.Viewport.MaxScale {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.min_scale %v exceeds max_scale %v", c.Viewport.MinScale, c.Viewport.MaxScale)
	}
	if c.Layout.NodeWidth < 0 || c.Layout.NodeHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout node size must not be negative")
	}
	return nil
}

// LayoutOptions returns the layout geometry with defaults filled in.
func (c *Config) LayoutOptions() layout.Options {
	o := c.Layout
	o.SetDefaults()
	return o
}

// ViewportOptions returns controller options for the configured motion.
func (c *Config) ViewportOptions() []viewport.Option {
	opts := []viewport.Option{viewport.WithReducedMotion(c.Viewport.ReducedMotion)}
	if c.Viewport.Smoothing > 0 {
		opts = append(opts, viewport.WithSmoothing(c.Viewport.Smoothing))
	}
	if c.Viewport.MinScale > 0 && c.Viewport.MaxScale > 0 {
		opts = append(opts, viewport.WithScaleLimits(c.Viewport.MinScale, c.Viewport.MaxScale))
	}
	return opts
}

// CacheConfig returns the cache backend settings. An empty or bad TTL
// falls back to cache.DefaultTTL.
func (c *Config) CacheConfig() cache.Config {
	ttl := cache.DefaultTTL
	if d, err := time.ParseDuration(c.Cache.TTL); err == nil && d > 0 {
		ttl = d
	}
	dir := c.Cache.Dir
	if dir == "" {
		dir = CacheDir()
	}
	return cache.Config{
		Backend:   c.Cache.Backend,
		Dir:       dir,
		RedisAddr: c.Cache.RedisAddr,
		TTL:       ttl,
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/cache"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v, want defaults", cfg.Layout)
	}
	if cfg.Viewport.Smoothing != 0.18 {
		t.Errorf("Viewport.Smoothing = %v, want 0.18", cfg.Viewport.Smoothing)
	}
	if cfg.Overview.Width != 200 || cfg.Overview.Height != 150 {
		t.Errorf("Overview = %+v, want 200x150", cfg.Overview)
	}
	if cfg.Store.Backend != "file" || cfg.Cache.Backend != "file" {
		t.Errorf("backends = %q/%q, want file/file", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	t.Setenv("XDG_CACHE_HOME", "/tmp/test-cache")
	if got := Dir(); got != "/tmp/test-xdg/ancestral-scribe" {
		t.Errorf("Dir() = %q", got)
	}
	if got := CacheDir(); got != "/tmp/test-cache/ancestral-scribe" {
		t.Errorf("CacheDir() = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := Dir(), filepath.Join(home, ".config", "ancestral-scribe"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[layout]
sibling_spacing = 120
compact = true

[viewport]
reduced_motion = true

[store]
backend = "sqlite"
sqlite_path = "/tmp/c.db"

[cache]
backend = "none"
ttl = "2h"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.SiblingSpacing != 120 || !cfg.Layout.Compact {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.NodeWidth != layout.NodeWidth {
		t.Errorf("unset keys should keep defaults, NodeWidth = %v", cfg.Layout.NodeWidth)
	}
	if !cfg.Viewport.ReducedMotion || cfg.Viewport.Smoothing != 0.18 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath != "/tmp/c.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	cc := cfg.CacheConfig()
	if cc.Backend != cache.BackendNone || cc.TTL != 2*time.Hour {
		t.Errorf("CacheConfig() = %+v", cc)
	}
	if n := len(cfg.ViewportOptions()); n != 3 {
		t.Errorf("ViewportOptions() = %d options, want 3", n)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":    "[layout\n",
		"store":     "[store]\nbackend = \"etcd\"\n",
		"cache":     "[cache]\nbackend = \"memcached\"\n",
		"ttl":       "[cache]\nttl = \"soon\"\n",
		"smoothing": "[viewport]\nsmoothing = 1.5\n",
		"scale":     "[viewport]\nmin_scale = 3.0\nmax_scale = 2.0\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Layout.GenerationSpacing = 300
	cfg.Server.Addr = "127.0.0.1:9000"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Layout.GenerationSpacing != 300 || loaded.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLayoutOptionsFillsZeros(t *testing.T) {
	cfg := &Config{}
	if got := cfg.LayoutOptions(); got != layout.DefaultOptions() {
		t.Errorf("LayoutOptions() = %+v, want defaults", got)
	}
}

// Package cache stores computed layouts and rendered artifacts.
//
// Layout is a pure function of (tree, collapsed set, layout options), and
// rendering is a pure function of (layout, render options). Both are keyed
// by content hashes through a [Keyer] so that repeated CLI runs and API
// requests for the same view skip the work entirely.
//
// Backends:
//   - file: hashed JSON files under a cache directory (CLI default)
//   - redis: shared cache for the HTTP server
//   - null: disables caching
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// DefaultTTL is the lifetime of cached layouts and artifacts.
const DefaultTTL = 7 * 24 * time.Hour

// Config selects and configures a cache backend.
type Config struct {
	Backend   string
	Dir       string
	RedisAddr string
	TTL       time.Duration
}

// Open creates the cache named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr})
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// GetJSON decodes the entry at key into v. A miss returns ErrCacheMiss;
// an undecodable entry is deleted and also reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// Package collapse persists the set of collapsed persons per family tree.
//
// The layout is a pure function of the tree and the collapsed set, so this
// set is the only view state worth keeping between sessions. Stores are
// keyed by tree identity (see [family.Identity]) and hold a sorted,
// duplicate-free list of person ids.
//
// Backends:
//   - memory: in-process map for tests and the HTTP server default
//   - file: one JSON file per tree under a config directory (CLI default)
//   - redis: a JSON value per tree for multi-instance servers
//   - mongo: one document per tree in the collapse_state collection
//   - sqlite: a single table in a local database file
//
// # Usage
//
//	store, err := collapse.Open(ctx, collapse.Config{Backend: "file"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	ids, err := collapse.Load(ctx, store, family.Identity(tree))
package collapse

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrNotFound is returned when no collapse state exists for a tree.
var ErrNotFound = errors.New("collapse state not found")

// Store persists collapsed person ids per tree.
type Store interface {
	// Get returns the collapsed ids for treeID, or ErrNotFound.
	Get(ctx context.Context, treeID string) ([]string, error)
	// Set replaces the collapsed ids for treeID. An empty set is stored as-is.
	Set(ctx context.Context, treeID string, ids []string) error
	// Delete removes any state for treeID. Missing state is not an error.
	Delete(ctx context.Context, treeID string) error
	// Close releases backend resources.
	Close() error
}

// State is the persisted record for one tree.
type State struct {
	TreeID    string    `json:"tree_id" bson:"_id"`
	Collapsed []string  `json:"collapsed" bson:"collapsed"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	SQLitePath    string `toml:"sqlite_path"`
}

// Open creates the store named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown collapse store backend %q", cfg.Backend)
	}
}

// Load returns the collapsed ids for treeID, treating missing state as empty.
func Load(ctx context.Context, s Store, treeID string) ([]string, error) {
	ids, err := s.Get(ctx, treeID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ids, err
}

// Toggle flips id in the stored set for treeID and returns the new set.
func Toggle(ctx context.Context, s Store, treeID, id string) ([]string, error) {
	ids, err := Load(ctx, s, treeID)
	if err != nil {
		return nil, err
	}
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, id)
	}
	ids = Normalize(ids)
	if err := s.Set(ctx, treeID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Normalize trims, dedupes and sorts ids. Blank ids are dropped.
// The result is never nil.
func Normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

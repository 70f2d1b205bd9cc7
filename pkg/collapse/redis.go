package collapse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/cache"
	errs "github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

// DefaultRedisPrefix namespaces collapse keys.
const DefaultRedisPrefix = "ancestral:collapsed:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // default DefaultRedisPrefix
	TTL      time.Duration // zero keeps state forever
}

// RedisStore keeps collapse state as JSON values in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection with PING,
// retrying briefly while the server comes up.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := cache.DefaultBackoff.Do(ctx, func() error {
		return cache.Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. The store owns the client
// and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(treeID string) string { return s.prefix + treeID }

func (s *RedisStore) Get(ctx context.Context, treeID string) ([]string, error) {
	data, err := s.client.Get(ctx, s.key(treeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse collapse state: %w", err)
	}
	return Normalize(st.Collapsed), nil
}

func (s *RedisStore) Set(ctx context.Context, treeID string, ids []string) error {
	data, err := json.Marshal(State{
		TreeID:    treeID,
		Collapsed: Normalize(ids),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal collapse state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(treeID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, treeID string) error {
	if err := s.client.Del(ctx, s.key(treeID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

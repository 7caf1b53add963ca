// FilePath: internal/cache/cache.go

// Package cache provides the shared key-value store behind field-level
// response caching, with Redis and in-memory backends.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/internal/config"
)

// Store is a shared external key-value cache. Get reports whether the key was
// present; a transport failure on read degrades to a miss at the call site.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NewStore builds the configured cache backend
func NewStore(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(cfg), nil
	case "memory":
		return NewMemoryStore(cfg.MaxTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// RedisStore backs the field cache with a shared Redis instance. Entries are
// idempotent derived data, so no locking is used and racing writes to the
// same key are last-write-wins.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects a Redis-backed store using the cache configuration
func NewRedisStore(cfg config.CacheConfig) *RedisStore {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
	}
	if cfg.EnableTLS {
		options.TLSConfig = &tls.Config{}
	}
	return &RedisStore{
		client: redis.NewClient(options),
		prefix: cfg.Prefix + "_",
	}
}

// Get fetches a cache entry. Transport errors are returned alongside a miss
// so callers can degrade instead of failing the field.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores a cache entry with the given ttl
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Ping verifies the Redis connection at startup
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error pinging cache: %w", err)
	}
	nuts.L.Infof("[Cache] Connected to redis cache")
	return nil
}

// MemoryStore is an in-process store for single-instance and test
// deployments
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates a memory-backed store with the given default ttl
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		c: gocache.New(defaultTTL, 10*time.Minute),
	}
}

// Get fetches a cache entry
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, found := s.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return value.([]byte), true, nil
}

// Set stores a cache entry with the given ttl
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.c.Set(key, value, ttl)
	return nil
}

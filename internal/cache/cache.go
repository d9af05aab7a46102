// Package cache stores encoded search responses in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL is used when Config.TTL is zero
const DefaultTTL = 5 * time.Minute

// Cache stores opaque values by key
type Cache interface {
	// Get returns the value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// redisAPI is the slice of the Redis client RedisCache uses; tests fake it.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Config holds Redis connection settings
type Config struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// RedisCache implements Cache on Redis
type RedisCache struct {
	api    redisAPI
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	c := newRedisCacheWithAPI(client, cfg)
	if err := c.api.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	return c, nil
}

func newRedisCacheWithAPI(api redisAPI, cfg Config) *RedisCache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "hungry:"
	}
	return &RedisCache{api: api, ttl: ttl, prefix: prefix}
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.api.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.api.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the connection
func (c *RedisCache) Close() error {
	return c.api.Close()
}

// SearchKey builds the cache key of a search response. The catalog version
// is part of the key so a reload makes older entries unreachable.
func SearchKey(catalogVersion uint64, normalizedQuery string) string {
	return fmt.Sprintf("search:v%d:%s", catalogVersion, normalizedQuery)
}

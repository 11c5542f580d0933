package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/logistics/console/internal/domain/shared"
	"github.com/logistics/console/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	viewKeyPrefix     = "console:view:"
	inflightKeyPrefix = "console:inflight:"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisViewCache implements ViewCache using Redis so every console
// instance revalidates against the same cached view
type RedisViewCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisViewCache creates a view cache on an existing Redis client.
// The client is owned by the caller and is not closed by Close.
func NewRedisViewCache(client *redis.Client, keyPrefix string) *RedisViewCache {
	if keyPrefix == "" {
		keyPrefix = viewKeyPrefix
	}
	return &RedisViewCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the payload stored under key, or ErrCacheMiss
func (c *RedisViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached view %s: %w", key, err)
	}
	return v, nil
}

// Set stores the payload under key with a TTL
func (c *RedisViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache view %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (c *RedisViewCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate view %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (c *RedisViewCache) Close() error {
	return nil
}

// releaseScript deletes KEYS[1] only while it still holds the token ARGV[1]
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisInFlightGuard implements InFlightGuard using Redis SETNX
type RedisInFlightGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisInFlightGuard creates a guard on an existing Redis client
func NewRedisInFlightGuard(client *redis.Client, keyPrefix string) *RedisInFlightGuard {
	if keyPrefix == "" {
		keyPrefix = inflightKeyPrefix
	}
	return &RedisInFlightGuard{client: client, keyPrefix: keyPrefix}
}

// Acquire marks key as in flight with a TTL.
// Uses SETNX (SET if Not eXists) with a fresh token as the value
func (g *RedisInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire submission key: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release clears key if token still holds it
func (g *RedisInFlightGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release submission key: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (g *RedisInFlightGuard) Close() error {
	return nil
}

var (
	_ shared.ViewCache     = (*RedisViewCache)(nil)
	_ shared.InFlightGuard = (*RedisInFlightGuard)(nil)
)

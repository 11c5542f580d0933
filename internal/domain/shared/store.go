package shared

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by ViewCache.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// ViewCache holds fetched view data keyed by data-set name.
// Entries are whole serialized payloads; callers own the encoding.
type ViewCache interface {
	// Get returns the payload stored under key, or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the payload under key with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close closes the cache and releases resources
	Close() error
}

// InFlightGuard marks a submission key as in progress
type InFlightGuard interface {
	// Acquire marks key as in flight with a TTL. It returns the holder
	// token and true if the key was newly acquired, or "" and false if the
	// key is already held
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release clears the key if token still holds it. A key that expired and
	// was acquired by another submission is left alone
	Release(ctx context.Context, key, token string) error

	// Close closes the guard and releases resources
	Close() error
}

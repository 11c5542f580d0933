package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/logistics/console/internal/domain/shared"
)

// entry represents a stored value with expiration
type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// ttlStore is an in-memory map with per-key expiry and a background sweeper
type ttlStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newTTLStore(sweepInterval time.Duration) *ttlStore {
	s := &ttlStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(sweepInterval)

	return s
}

func (s *ttlStore) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, false
	}
	return e.value, true
}

func (s *ttlStore) set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// setNX stores value only when key is absent or expired
func (s *ttlStore) setNX(key string, value []byte, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if e, ok := s.entries[key]; ok && !e.expired(now) {
		return false
	}
	s.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (s *ttlStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// deleteIf removes key only while it holds value
func (s *ttlStore) deleteIf(key string, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || string(e.value) != string(value) {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *ttlStore) close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

func (s *ttlStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *ttlStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// InMemoryViewCache implements ViewCache using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryViewCache struct {
	*ttlStore
}

// NewInMemoryViewCache creates a new in-memory view cache
func NewInMemoryViewCache() *InMemoryViewCache {
	return &InMemoryViewCache{ttlStore: newTTLStore(time.Minute)}
}

// Get returns the payload stored under key, or ErrCacheMiss
func (c *InMemoryViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := c.get(key)
	if !ok {
		return nil, shared.ErrCacheMiss
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores the payload under key with a TTL
func (c *InMemoryViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.set(key, stored, ttl)
	return nil
}

// Delete removes key
func (c *InMemoryViewCache) Delete(ctx context.Context, key string) error {
	c.delete(key)
	return nil
}

// Close stops the sweeper. Safe to call multiple times
func (c *InMemoryViewCache) Close() error {
	c.close()
	return nil
}

// InMemoryInFlightGuard implements InFlightGuard using an in-memory map.
// It does not share state across process instances.
type InMemoryInFlightGuard struct {
	*ttlStore
}

// NewInMemoryInFlightGuard creates a new in-memory guard
func NewInMemoryInFlightGuard() *InMemoryInFlightGuard {
	return &InMemoryInFlightGuard{ttlStore: newTTLStore(time.Minute)}
}

// Acquire marks key as in flight. Returns false if it is already held
func (g *InMemoryInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if !g.setNX(key, []byte(token), ttl) {
		return "", false, nil
	}
	return token, true, nil
}

// Release clears key if token still holds it
func (g *InMemoryInFlightGuard) Release(ctx context.Context, key, token string) error {
	g.deleteIf(key, []byte(token))
	return nil
}

// Close stops the sweeper. Safe to call multiple times
func (g *InMemoryInFlightGuard) Close() error {
	g.close()
	return nil
}

var (
	_ shared.ViewCache     = (*InMemoryViewCache)(nil)
	_ shared.InFlightGuard = (*InMemoryInFlightGuard)(nil)
)

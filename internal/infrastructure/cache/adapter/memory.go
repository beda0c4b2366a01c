package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ruturajs19/chat-app/internal/infrastructure/cache/port"
)

// DefaultMemoryCacheSize bounds the in-process cache when no size is given.
const DefaultMemoryCacheSize = 4096

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a bounded, process-local port.Cache. It stands in for
// Redis when the service runs with the memory store driver. Least recently
// used keys are evicted once the size limit is reached.
type MemoryCache struct {
	mu    sync.Mutex
	cache *lru.Cache
	now   func() time.Time
}

func NewMemoryCache(maxSize int) (*MemoryCache, error) {
	if maxSize <= 0 {
		maxSize = DefaultMemoryCacheSize
	}
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, fmt.Errorf("memory cache: %w", err)
	}
	return &MemoryCache{cache: cache, now: time.Now}, nil
}

var _ port.Cache = (*MemoryCache)(nil)

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookupLocked(key)
	if !ok {
		return "", port.ErrMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(key, m.entry(value, ttl))
	return nil
}

// SetNX is atomic with respect to every other MemoryCache call.
func (m *MemoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookupLocked(key); ok {
		return false, nil
	}
	m.cache.Add(key, m.entry(value, ttl))
	return true, nil
}

func (m *MemoryCache) Del(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.lookupLocked(k); ok {
			m.cache.Remove(k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

func (m *MemoryCache) Close() error {
	m.cache.Purge()
	return nil
}

func (m *MemoryCache) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

func (m *MemoryCache) lookupLocked(key string) (memoryEntry, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	e := v.(memoryEntry)
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.cache.Remove(key)
		return memoryEntry{}, false
	}
	return e, true
}

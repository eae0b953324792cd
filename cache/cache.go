package cache

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// TTLCache is a generic in-memory key-value store with per-entry expiry.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Expiry: Get on an expired entry evicts it and reports a miss. No
//   background timer is required for correctness; Sweep bounds memory.
// - Ordering: no ordering guarantees across keys; last writer for a key wins.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
}

type entry[V any] struct {
	value     V
	storedAt  time.Time
	expiresAt time.Time
}

// New creates an empty TTL cache.
func New[V any]() *TTLCache[V] {
	return &TTLCache[V]{
		entries: make(map[string]*entry[V]),
	}
}

// Get retrieves a value from the cache. Returns the zero value and false on
// miss or expiry.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if time.Now().After(e.expiresAt) {
		// Expired - clean up lazily. Re-check under the write lock in case
		// another writer replaced the entry in the meantime.
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set stores a value with the given TTL. TTL<=0 means no caching.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	now := time.Now()
	c.mu.Lock()
	c.entries[key] = &entry[V]{
		value:     value,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()

	return nil
}

// Has reports whether a fresh entry exists for key without touching it.
func (c *TTLCache[V]) Has(key string) bool {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	return ok && time.Now().Before(e.expiresAt)
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep evicts all expired entries and returns how many were removed.
func (c *TTLCache[V]) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

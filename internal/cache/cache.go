// Package cache provides a small in-memory TTL map used to memoize analysis
// results within one process.
package cache

import (
	"crypto/md5" // #nosec G501 -- used for cache keys, not security
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Clock abstracts time so that expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

type entry struct {
	value  string
	expiry time.Time
}

// Cache is a concurrency-safe string map whose entries expire after a TTL.
// Expired entries are evicted lazily on read.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry
}

// New creates a Cache with the given default TTL. A nil clock means
// SystemClock.
func New(ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.clock.Now().After(e.expiry) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key. A non-positive ttl uses the cache default.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiry: c.clock.Now().Add(ttl)}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key derives a stable key from parts: the hex MD5 of the parts joined
// with "|".
func Key(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|"))) // #nosec G401
	return hex.EncodeToString(sum[:])
}

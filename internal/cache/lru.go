// OceanLens - Live Vessel, Air Quality, and Wave Map Aggregator
// Copyright 2026 OceanLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/oceanlens/oceanlens

// Package cache provides the unified response cache shared by every query
// endpoint. One bounded store serves vessel, air-quality, and wave responses
// so total memory stays capped no matter which layers clients hammer.
//
// Key features:
//   - O(1) Get, Add, and LRU eviction
//   - TTL with lazy expiration on read
//   - Single-flight fetch coalescing for concurrent misses on one key
//
// The implementation uses a doubly-linked list for recency order and a
// hashmap for lookups.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oceanlens/oceanlens/internal/metrics"
)

// lruEntry is a node in the recency list.
type lruEntry struct {
	key       string
	value     any
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// Cache is a thread-safe LRU cache with TTL. Values are whatever the
// endpoint caches: a GeoJSON feature collection or a single wave reading.
type Cache struct {
	mu sync.RWMutex

	capacity int
	ttl      time.Duration

	// items maps keys to linked list nodes for O(1) lookup
	items map[string]*lruEntry

	// head.next is the most recently used, tail.prev the least
	head *lruEntry
	tail *lruEntry

	hits   int64
	misses int64

	// group coalesces concurrent fetches for the same key
	group singleflight.Group

	now func() time.Time
}

// New creates a cache with the given capacity and TTL.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves an entry. A hit refreshes the entry: recency is bumped and
// the expiry clock restarts. Expired entries are removed on access and count
// as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		if c.now().After(entry.expiresAt) {
			c.removeEntry(entry)
			metrics.CacheEvictions.WithLabelValues("ttl").Inc()
			metrics.CacheSize.Set(float64(len(c.items)))
			c.misses++
			return nil, false
		}
		entry.expiresAt = c.now().Add(c.ttl)
		c.moveToFront(entry)
		c.hits++
		return entry.value, true
	}

	c.misses++
	return nil, false
}

// Add adds or updates an entry, evicting the least recently used entry when
// over capacity.
func (c *Cache) Add(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if entry, exists := c.items[key]; exists {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
		metrics.CacheEvictions.WithLabelValues("lru").Inc()
	}
	metrics.CacheSize.Set(float64(len(c.items)))
}

// GetOrFetch returns the cached value for key, or runs fetch to produce it.
// Concurrent callers missing on the same key share a single fetch; only one
// upstream request goes out per key per TTL window under load. The returned
// bool reports whether the value came from cache.
//
// A failed fetch is not cached, so the next request retries upstream.
func (c *Cache) GetOrFetch(ctx context.Context, kind, key string, fetch func(context.Context) (any, error)) (any, bool, error) {
	if value, ok := c.Get(key); ok {
		metrics.CacheHits.WithLabelValues(kind).Inc()
		return value, true, nil
	}
	metrics.CacheMisses.WithLabelValues(kind).Inc()

	value, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have populated the key while we queued
		if value, ok := c.Get(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Add(key, value)
		return value, nil
	})
	if shared {
		metrics.CacheFetchShared.Inc()
	}
	if err != nil {
		return nil, false, err
	}
	return value, false, nil
}

// Remove removes an entry. Returns true if it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.items[key]; exists {
		c.removeEntry(entry)
		metrics.CacheSize.Set(float64(len(c.items)))
		return true
	}
	return false
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns hit/miss counts and current size.
func (c *Cache) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// CleanupExpired removes all expired entries and returns how many were
// dropped. Reads already skip expired entries; the janitor just reclaims
// memory for keys nobody asks for anymore.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	// Walk from tail (oldest) to head (newest)
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			metrics.CacheEvictions.WithLabelValues("ttl").Inc()
			removed++
		}
		entry = prev
	}

	if removed > 0 {
		metrics.CacheSize.Set(float64(len(c.items)))
	}
	return removed
}

// SetClock replaces the time source for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Internal methods (must be called with lock held)

func (c *Cache) addToFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *Cache) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *Cache) removeEntry(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *Cache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}

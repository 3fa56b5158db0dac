// Marquee - Movie and TV Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package cache provides a thread-safe in-memory TTL cache with a capacity
// bound.
//
// It backs the upstream freshness hints: each upstream route is cached for
// its own revalidation window (search 5m, discover 1h, genres 24h), and
// entries are served until that window passes. Keys derive from client query
// strings, so the cache holds at most maxEntries values and drops the least
// recently used one to make room.
//
// Expired entries are dropped lazily on Get and in bulk by the janitor. The
// janitor runs as a supervised service (Serve) so it stops with the process
// instead of leaking a goroutine.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/metrics"
)

const (
	// DefaultCleanupInterval is how often the janitor sweeps expired entries.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultMaxEntries applies when New is given a non-positive capacity.
	DefaultMaxEntries = 10000
)

// entry is a list element value; the list runs most to least recently used.
type entry struct {
	key       string
	data      interface{}
	expiresAt time.Time
}

// Cache is a named, bounded TTL cache. The name labels its Prometheus metrics.
type Cache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
	name       string
	now        func() time.Time

	cleanupInterval time.Duration
	stats           Stats
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache holding at most maxEntries values, each expiring after
// ttl unless SetWithTTL overrides it. Start the janitor with Serve.
//
//	responses := cache.New("tmdb", time.Hour, cfg.TMDB.CacheMaxEntries)
//	tree.AddStorageService(responses)
func New(name string, ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		items:           make(map[string]*list.Element),
		order:           list.New(),
		maxEntries:      maxEntries,
		ttl:             ttl,
		name:            name,
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
		stats:           Stats{LastCleanup: time.Now()},
	}
}

// Get returns a live entry and marks it recently used. Expired entries are
// removed and count as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.recordMiss()
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.remove(el)
		c.recordEviction(1)
		c.recordMiss()
		c.setSize()
		return nil, false
	}

	c.order.MoveToFront(el)
	c.recordHit()
	return e.data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL, evicting the least recently
// used entry when the cache is full. A non-positive ttl is a no-op.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.data, e.expiresAt = value, expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, data: value, expiresAt: expiresAt})
	var evicted int64
	for c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
		evicted++
	}
	c.recordEviction(evicted)
	c.setSize()
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
		c.recordEviction(1)
		c.setSize()
	}
}

// Len returns the number of stored entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.maxEntries
}

// GetStats returns a snapshot of the cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns the hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Serve runs the janitor until ctx is cancelled. It implements suture.Service.
func (c *Cache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// String names the janitor in supervisor logs.
func (c *Cache) String() string {
	return "cache-janitor:" + c.name
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var evicted int64
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expiresAt) {
			c.remove(el)
			evicted++
		}
		el = prev
	}
	c.stats.LastCleanup = now
	c.recordEviction(evicted)
	c.setSize()
}

// The helpers below must be called with mu held.

func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

func (c *Cache) recordHit() {
	c.stats.Hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordMiss() {
	c.stats.Misses++
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordEviction(n int64) {
	if n == 0 {
		return
	}
	c.stats.Evictions += n
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

func (c *Cache) setSize() {
	c.stats.TotalKeys = int64(c.order.Len())
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(c.stats.TotalKeys))
}

// GenerateKey builds a compact cache key from a prefix and parameters.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}

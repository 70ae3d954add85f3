// Package cache is a size-bounded LRU for generated responses. Entries past
// their TTL are not served as fresh but stay readable as stale fallbacks
// until they are evicted for capacity.
package cache

import (
	"container/list"
	"sync"
	"time"

	"nft-gallery-agent/internal/domain"
)

const (
	DefaultCapacity = 256
	DefaultTTL      = 5 * time.Minute
)

// Cache is safe for concurrent use. Writes overwrite by key, so interleaved
// completions for the same key leave the last writer's value.
type Cache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is most recently used
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(capacity int, ttl time.Duration, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry for key only while it is younger than the TTL.
func (c *Cache) Get(key string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	e := el.Value.(domain.CacheEntry)
	if c.now().Sub(e.Timestamp) >= c.ttl {
		return domain.CacheEntry{}, false
	}
	c.order.MoveToFront(el)
	return e, true
}

// GetStale returns the entry for key regardless of its age.
func (c *Cache) GetStale(key string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return el.Value.(domain.CacheEntry), true
}

// Set stores response under key with the current time, evicting the least
// recently used entry when the cache is full.
func (c *Cache) Set(key, response string) domain.CacheEntry {
	e := domain.CacheEntry{Key: key, Response: response, Timestamp: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return e
	}
	for len(c.items) >= c.capacity {
		c.evictOldest()
	}
	c.items[key] = c.order.PushFront(e)
	return e
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// evictOldest must be called with the lock held.
func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(domain.CacheEntry).Key)
}

package areas

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Cache keeps area API responses for a fixed TTL so that every driver
// refresh does not hit the external service.
type Cache struct {
	entries    map[string]*cacheEntry
	mutex      sync.RWMutex
	maxEntries int
	ttl        time.Duration
	stats      cacheStats
	stop       chan struct{}
	stopOnce   sync.Once
}

type cacheEntry struct {
	value        any
	createdAt    time.Time
	lastAccessed time.Time
	hitCount     int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	mutex     sync.Mutex
}

// NewCache creates a cache. A non-positive ttl disables caching.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: 256,
		ttl:        ttl,
		stop:       make(chan struct{}),
	}
	if ttl > 0 {
		go c.cleanupExpired()
	}
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, found := c.entries[key]
	if !found {
		c.recordMiss()
		return nil, false
	}
	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	entry.lastAccessed = time.Now()
	entry.hitCount++
	c.recordHit()
	return entry.value, true
}

func (c *Cache) Set(key string, value any) {
	if c.ttl <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[key] = &cacheEntry{value: value, createdAt: now, lastAccessed: now}
}

// evictOldest removes the least recently used entry. Caller holds the lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccessed
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.recordEviction()
		log.Printf("🗑️  Evicted area cache entry: %s", oldestKey)
	}
}

func (c *Cache) cleanupExpired() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.Sub(entry.createdAt) > c.ttl {
					delete(c.entries, key)
					c.recordEviction()
				}
			}
			c.mutex.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) recordHit() {
	c.stats.mutex.Lock()
	c.stats.hits++
	c.stats.mutex.Unlock()
}

func (c *Cache) recordMiss() {
	c.stats.mutex.Lock()
	c.stats.misses++
	c.stats.mutex.Unlock()
}

func (c *Cache) recordEviction() {
	c.stats.mutex.Lock()
	c.stats.evictions++
	c.stats.mutex.Unlock()
}

// Stats returns cache statistics for the health endpoint.
func (c *Cache) Stats() map[string]interface{} {
	c.mutex.RLock()
	size := len(c.entries)
	c.mutex.RUnlock()

	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()

	hitRate := 0.0
	total := c.stats.hits + c.stats.misses
	if total > 0 {
		hitRate = float64(c.stats.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"cache_size":  size,
		"max_entries": c.maxEntries,
		"hits":        c.stats.hits,
		"misses":      c.stats.misses,
		"hit_rate":    fmt.Sprintf("%.2f%%", hitRate),
		"evictions":   c.stats.evictions,
		"ttl_seconds": int(c.ttl.Seconds()),
	}
}

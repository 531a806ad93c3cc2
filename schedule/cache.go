package schedule

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/rule"
)

// cacheEntry is one cached expansion result.
type cacheEntry struct {
	result     []dates.Date
	expiresAt  time.Time
	accessedAt time.Time
}

// Cache memoizes rule expansions. Keys are derived from the rule's
// serialized form plus the range, so two equal rules share entries.
// Invalidation contract: Invalidate drops every range cached for one rule,
// InvalidateAll drops everything, and entries expire after the configured
// TTL regardless.
type Cache struct {
	entries         map[string]*cacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before cleanup
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for expansion caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewCache creates an expansion cache and starts its cleanup goroutine;
// call Close when done with it.
func NewCache(config CacheConfig) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}

	c := &Cache{
		entries:         make(map[string]*cacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// ruleKey identifies all entries belonging to one rule.
func ruleKey(r rule.Rule) string {
	sum := sha256.Sum256([]byte(r.String()))
	return fmt.Sprintf("%x", sum[:8])
}

func cacheKey(r rule.Rule, start, end dates.Date) string {
	return fmt.Sprintf("%s:%s:%s", ruleKey(r), start, end)
}

// Get retrieves a cached expansion if present and unexpired. The returned
// slice is a copy; callers may keep or modify it freely.
func (c *Cache) Get(r rule.Rule, start, end dates.Date) ([]dates.Date, bool) {
	key := cacheKey(r, start, end)

	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.accessedAt = now
	result := slices.Clone(entry.result)
	c.mutex.Unlock()

	return result, true
}

// Set stores an expansion result.
func (c *Cache) Set(r rule.Rule, start, end dates.Date, result []dates.Date) {
	now := time.Now()
	entry := &cacheEntry{
		result:     slices.Clone(result),
		expiresAt:  now.Add(c.ttl),
		accessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[cacheKey(r, start, end)] = entry
	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// Invalidate drops every cached range for the given rule.
func (c *Cache) Invalidate(r rule.Rule) {
	prefix := ruleKey(r) + ":"

	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// InvalidateAll drops every cached entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// cleanup removes expired entries, then the least recently accessed ones
// while over the size limit. Caller holds the lock.
func (c *Cache) cleanup() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	byAge := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		byAge = append(byAge, keyAccess{key: key, accessedAt: entry.accessedAt})
	}
	slices.SortFunc(byAge, func(a, b keyAccess) int {
		return a.accessedAt.Compare(b.accessedAt)
	})

	entriesToRemove := len(c.entries) - c.maxEntries
	for i := 0; i < entriesToRemove && i < len(byAge); i++ {
		delete(c.entries, byAge[i].key)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache.
func (c *Cache) Close() {
	close(c.stopCleanup)
	c.InvalidateAll()
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	expired := 0
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			expired++
		}
	}
	return CacheStats{
		TotalEntries:   len(c.entries),
		ExpiredEntries: expired,
		ActiveEntries:  len(c.entries) - expired,
	}
}

// CacheStats provides information about cache occupancy.
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

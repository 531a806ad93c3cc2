package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/rule"
)

func newTestCache(t *testing.T, cfg CacheConfig) *Cache {
	t.Helper()
	c := NewCache(cfg)
	t.Cleanup(c.Close)
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig)
	r := rule.Parse("FREQ=DAILY;DTSTART:20250101")
	start, end := d("2025-01-01"), d("2025-01-31")

	_, ok := c.Get(r, start, end)
	assert.False(t, ok, "empty cache misses")

	result := []dates.Date{d("2025-01-01"), d("2025-01-02")}
	c.Set(r, start, end, result)

	got, ok := c.Get(r, start, end)
	require.True(t, ok)
	assert.Equal(t, result, got)

	// Same rule, different range: separate entry.
	_, ok = c.Get(r, start, d("2025-02-28"))
	assert.False(t, ok)
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig)
	r := rule.Parse("FREQ=DAILY;DTSTART:20250101")
	start, end := d("2025-01-01"), d("2025-01-02")

	c.Set(r, start, end, []dates.Date{d("2025-01-01"), d("2025-01-02")})

	got, ok := c.Get(r, start, end)
	require.True(t, ok)
	got[0] = d("1999-12-31")

	again, ok := c.Get(r, start, end)
	require.True(t, ok)
	assert.Equal(t, "2025-01-01", again[0].String())
}

func TestCache_Invalidate(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig)
	daily := rule.Parse("FREQ=DAILY;DTSTART:20250101")
	weekly := rule.Parse("FREQ=WEEKLY;BYDAY=FR;DTSTART:20250110")
	start, end := d("2025-01-01"), d("2025-01-31")

	c.Set(daily, start, end, []dates.Date{d("2025-01-01")})
	c.Set(daily, start, d("2025-02-28"), []dates.Date{d("2025-01-01")})
	c.Set(weekly, start, end, []dates.Date{d("2025-01-10")})

	c.Invalidate(daily)

	_, ok := c.Get(daily, start, end)
	assert.False(t, ok, "all ranges of the invalidated rule are dropped")
	_, ok = c.Get(daily, start, d("2025-02-28"))
	assert.False(t, ok)
	_, ok = c.Get(weekly, start, end)
	assert.True(t, ok, "other rules are untouched")
}

func TestCache_InvalidateAll(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig)
	r := rule.Parse("FREQ=DAILY;DTSTART:20250101")
	c.Set(r, d("2025-01-01"), d("2025-01-31"), nil)

	c.InvalidateAll()

	assert.Equal(t, 0, c.Stats().TotalEntries)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t, CacheConfig{
		TTL:             20 * time.Millisecond,
		MaxEntries:      10,
		CleanupInterval: time.Hour, // expiry checked on Get, not only by cleanup
	})
	r := rule.Parse("FREQ=DAILY;DTSTART:20250101")
	start, end := d("2025-01-01"), d("2025-01-31")

	c.Set(r, start, end, []dates.Date{d("2025-01-01")})
	_, ok := c.Get(r, start, end)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get(r, start, end)
	assert.False(t, ok, "entry expired")
}

func TestCache_EvictsLeastRecentlyAccessed(t *testing.T) {
	c := newTestCache(t, CacheConfig{
		TTL:             time.Hour,
		MaxEntries:      2,
		CleanupInterval: time.Hour,
	})
	r := rule.Parse("FREQ=DAILY;DTSTART:20250101")

	c.Set(r, d("2025-01-01"), d("2025-01-02"), nil)
	time.Sleep(2 * time.Millisecond)
	c.Set(r, d("2025-02-01"), d("2025-02-02"), nil)
	time.Sleep(2 * time.Millisecond)
	c.Set(r, d("2025-03-01"), d("2025-03-02"), nil)

	assert.LessOrEqual(t, c.Stats().TotalEntries, 2)
	_, ok := c.Get(r, d("2025-01-01"), d("2025-01-02"))
	assert.False(t, ok, "oldest entry evicted")
}

func TestEngine_CachedGenerate(t *testing.T) {
	e := NewWithConfig(Config{
		CacheEnabled:     true,
		Cache:            DefaultCacheConfig,
		MaxLookaheadDays: DefaultConfig.MaxLookaheadDays,
	})
	t.Cleanup(e.Close)

	r := rule.Parse("FREQ=WEEKLY;BYDAY=TU;DTSTART:20250107")
	first := e.Generate(r, d("2025-01-01"), d("2025-01-31"))
	second := e.Generate(r, d("2025-01-01"), d("2025-01-31"))
	assert.Equal(t, strs(first), strs(second))
	assert.Equal(t, 1, e.CacheStats().TotalEntries)

	e.InvalidateRule(r)
	assert.Equal(t, 0, e.CacheStats().TotalEntries)
}

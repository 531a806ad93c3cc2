package schedule

import (
	"log/slog"
	"time"
)

// Config holds configuration options for the recurrence engine.
type Config struct {
	// Cache configuration
	CacheEnabled bool
	Cache        CacheConfig

	// MaxLookaheadDays bounds the forward scan of NextOccurrence for
	// unbounded rules, so a rule that can never match again cannot loop
	// forever.
	MaxLookaheadDays int

	// Logger receives diagnostics; nil discards them.
	Logger *slog.Logger
}

// DefaultConfig provides sensible defaults for production use.
var DefaultConfig = Config{
	CacheEnabled:     true,
	Cache:            DefaultCacheConfig,
	MaxLookaheadDays: 366 * 50, // 50 years
}

// HighPerformanceConfig is tuned for large vaults with many recurring tasks.
var HighPerformanceConfig = Config{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             30 * time.Minute,
		MaxEntries:      5000,
		CleanupInterval: 10 * time.Minute,
	},
	MaxLookaheadDays: 366 * 10,
}

// LowMemoryConfig is tuned for memory-constrained hosts.
var LowMemoryConfig = Config{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 2 * time.Minute,
	},
	MaxLookaheadDays: 366 * 50,
}

// DisabledCacheConfig turns off caching entirely; every query recomputes.
var DisabledCacheConfig = Config{
	CacheEnabled:     false,
	MaxLookaheadDays: 366 * 50,
}

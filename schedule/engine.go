// Package schedule is the recurrence engine: it decides whether a task is
// due on a given day, expands a rule into the occurrences inside a date
// range, and computes the next not-yet-completed occurrence after a
// completion or rule edit.
//
// Every operation is a pure function over its inputs. The engine never
// reads a clock; "today" is always supplied by the caller from a single
// canonical resolution point.
package schedule

import (
	"io"
	"log/slog"

	"github.com/samber/mo"

	"github.com/notetools/tasknote/dates"
	"github.com/notetools/tasknote/ledger"
	"github.com/notetools/tasknote/rule"
)

// Engine evaluates recurrence rules over canonical calendar days.
type Engine struct {
	cfg    Config
	cache  *Cache
	logger *slog.Logger
}

// New creates an engine with the default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(cfg Config) *Engine {
	if cfg.MaxLookaheadDays <= 0 {
		cfg.MaxLookaheadDays = DefaultConfig.MaxLookaheadDays
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var cache *Cache
	if cfg.CacheEnabled {
		cache = NewCache(cfg.Cache)
	}
	return &Engine{cfg: cfg, cache: cache, logger: logger}
}

// Close releases the engine's cache, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// IsDue reports whether an occurrence of r falls on candidate. The anchor
// itself is eligible when it matches the pattern; candidates before the
// anchor or past an UNTIL boundary are never due. The predicate is pure and
// timezone-agnostic: both inputs are UTC-canonical by construction.
func (e *Engine) IsDue(r rule.Rule, candidate dates.Date) bool {
	anchor, ok := r.Anchor.Get()
	if !r.IsRecurring() || !ok {
		return false
	}
	if candidate.Before(anchor) {
		return false
	}
	if until, hasUntil := r.Until.Get(); hasUntil && candidate.After(until) {
		return false
	}
	if !matchesPattern(r, anchor, candidate) {
		return false
	}
	if r.Count > 0 && occurrenceIndex(r, anchor, candidate) > r.Count {
		return false
	}
	return true
}

// Generate expands r into the ordered occurrence dates within [start, end],
// both bounds inclusive. The walk steps at the rule's natural period size
// but yields exactly the dates for which IsDue is true. An empty range or a
// boundary exhausted before start yields an empty result.
func (e *Engine) Generate(r rule.Rule, start, end dates.Date) []dates.Date {
	anchor, ok := r.Anchor.Get()
	if !r.IsRecurring() || !ok {
		if r.IsRecurring() {
			e.logger.Debug("rule has no anchor, generating nothing", "rule", r.String())
		}
		return nil
	}
	if end.Before(start) {
		return nil
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(r, start, end); ok {
			return cached
		}
	}

	limit := end
	if until, hasUntil := r.Until.Get(); hasUntil && until.Before(limit) {
		limit = until
	}

	// COUNT rules are indexed from the anchor, so the walk must start there;
	// otherwise it can fast-forward to the requested range.
	from := start
	if r.Count > 0 {
		from = anchor
	}

	var out []dates.Date
	seen := 0
	walkOccurrences(r, anchor, from, limit, func(d dates.Date) bool {
		seen++
		if r.Count > 0 && seen > r.Count {
			return false
		}
		if d.Before(start) {
			return true
		}
		out = append(out, d)
		return true
	})

	if e.cache != nil {
		e.cache.Set(r, start, end, out)
	}
	return out
}

// NextOccurrence scans forward from `from` and returns the first occurrence
// whose completion is not recorded in the ledger, or None when the rule's
// boundary leaves no occurrence ahead. The caller decides what an exhausted
// rule means for the task's scheduled date.
func (e *Engine) NextOccurrence(r rule.Rule, led ledger.Ledger, from dates.Date) mo.Option[dates.Date] {
	anchor, ok := r.Anchor.Get()
	if !r.IsRecurring() || !ok {
		return mo.None[dates.Date]()
	}

	scanStart := from
	if anchor.After(scanStart) {
		scanStart = anchor
	}

	// Bounded rules have a finite occurrence set; scan it directly.
	if until, hasUntil := r.Until.Get(); hasUntil {
		for _, d := range e.Generate(r, scanStart, until) {
			if !led.Contains(d) {
				return mo.Some(d)
			}
		}
		return mo.None[dates.Date]()
	}
	if r.Count > 0 {
		next := mo.None[dates.Date]()
		idx := 0
		walkOccurrences(r, anchor, anchor, anchor.AddDays(e.cfg.MaxLookaheadDays), func(d dates.Date) bool {
			idx++
			if idx > r.Count {
				return false
			}
			if d.Before(scanStart) || led.Contains(d) {
				return true
			}
			next = mo.Some(d)
			return false
		})
		return next
	}

	// Unbounded: scan in windows so the completed prefix of a long-running
	// task does not force one huge expansion.
	horizon := e.cfg.MaxLookaheadDays
	window := 366 * r.EffectiveInterval()
	if window > horizon {
		window = horizon
	}
	for offset := 0; offset < horizon; offset += window {
		winEnd := offset + window - 1
		if winEnd >= horizon {
			winEnd = horizon - 1
		}
		for _, d := range e.Generate(r, scanStart.AddDays(offset), scanStart.AddDays(winEnd)) {
			if !led.Contains(d) {
				return mo.Some(d)
			}
		}
	}
	e.logger.Warn("no occurrence found within lookahead horizon",
		"rule", r.String(), "from", from.String(), "horizon_days", horizon)
	return mo.None[dates.Date]()
}

// InvalidateRule drops cached expansions for a rule, called after the rule
// is edited.
func (e *Engine) InvalidateRule(r rule.Rule) {
	if e.cache != nil {
		e.cache.Invalidate(r)
	}
}

// CacheStats reports cache statistics; the zero value when caching is
// disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

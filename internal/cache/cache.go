package cache

import (
	"log/slog"
	"time"

	"github.com/roach88/symcore/internal/ir"
)

// Default tier sizes and TTL.
const (
	DefaultFastCacheSize     = 1000
	DefaultExactCacheSize    = 500
	DefaultSymbolicCacheSize = 200
	DefaultTTL               = time.Hour
)

// Estimated work avoided by one hit in each tier.
const (
	fastHitSaving     = time.Microsecond
	exactHitSaving    = 100 * time.Microsecond
	symbolicHitSaving = time.Millisecond
)

// Tier names used in logs and stats.
const (
	TierFast     = "fast"
	TierExact    = "exact"
	TierSymbolic = "symbolic"
)

// Config sizes the tiers. A zero TTL disables expiry.
type Config struct {
	Enabled           bool
	FastCacheSize     int
	ExactCacheSize    int
	SymbolicCacheSize int
	TTL               time.Duration
}

// DefaultConfig returns an enabled cache with the default sizes and a one
// hour TTL.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		FastCacheSize:     DefaultFastCacheSize,
		ExactCacheSize:    DefaultExactCacheSize,
		SymbolicCacheSize: DefaultSymbolicCacheSize,
		TTL:               DefaultTTL,
	}
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(cache *Cache) {
		cache.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cache *Cache) {
		cache.logger = l
	}
}

// Cache is the three-tier compute cache.
type Cache struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger

	fast     *tier[FastKey, int64]
	exact    *tier[ExactKey, ir.Number]
	symbolic *tier[SymbolicKey, ir.Expression]
}

// New creates a cache. When cfg.Enabled is false every lookup misses and
// nothing is stored.
func New(cfg Config, opts ...Option) *Cache {
	c := &Cache{
		cfg:      cfg,
		clock:    SystemClock,
		logger:   slog.Default(),
		fast:     newTier[FastKey, int64](TierFast, cfg.FastCacheSize),
		exact:    newTier[ExactKey, ir.Number](TierExact, cfg.ExactCacheSize),
		symbolic: newTier[SymbolicKey, ir.Expression](TierSymbolic, cfg.SymbolicCacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the configuration the cache was built with.
func (c *Cache) Config() Config {
	return c.cfg
}

// Clock returns the cache's time source.
func (c *Cache) Clock() Clock {
	return c.clock
}

// GetFast looks up a small-integer result.
func (c *Cache) GetFast(key FastKey) (int64, bool) {
	if !c.cfg.Enabled {
		return 0, false
	}
	return c.fast.get(key, c.clock.Now(), c.cfg.TTL)
}

// PutFast stores a small-integer result.
func (c *Cache) PutFast(key FastKey, value int64, cost uint32) {
	if !c.cfg.Enabled {
		return
	}
	c.logEviction(TierFast, c.fast.put(key, value, cost, c.clock.Now()))
}

// GetExact looks up an exact Number result.
func (c *Cache) GetExact(key ExactKey) (ir.Number, bool) {
	if !c.cfg.Enabled {
		return nil, false
	}
	return c.exact.get(key, c.clock.Now(), c.cfg.TTL)
}

// PutExact stores an exact Number result.
func (c *Cache) PutExact(key ExactKey, value ir.Number, cost uint32) {
	if !c.cfg.Enabled {
		return
	}
	c.logEviction(TierExact, c.exact.put(key, value, cost, c.clock.Now()))
}

// GetSymbolic looks up a rewritten expression.
func (c *Cache) GetSymbolic(key SymbolicKey) (ir.Expression, bool) {
	if !c.cfg.Enabled {
		return nil, false
	}
	return c.symbolic.get(key, c.clock.Now(), c.cfg.TTL)
}

// PutSymbolic stores a rewritten expression.
func (c *Cache) PutSymbolic(key SymbolicKey, value ir.Expression, cost uint32) {
	if !c.cfg.Enabled {
		return
	}
	c.logEviction(TierSymbolic, c.symbolic.put(key, value, cost, c.clock.Now()))
}

// PeekSymbolic returns the stored entry for key without recording a hit.
func (c *Cache) PeekSymbolic(key SymbolicKey) (Entry[ir.Expression], bool) {
	return c.symbolic.peek(key)
}

// PeekFast returns the stored entry for key without recording a hit.
func (c *Cache) PeekFast(key FastKey) (Entry[int64], bool) {
	return c.fast.peek(key)
}

func (c *Cache) logEviction(tierName string, evicted int) {
	if evicted > 0 {
		c.logger.Debug("cache eviction", "tier", tierName, "removed", evicted)
	}
}

// SweepExpired removes every entry older than the TTL from all tiers and
// returns how many were removed.
func (c *Cache) SweepExpired() int {
	if c.cfg.TTL <= 0 {
		return 0
	}
	now := c.clock.Now()
	removed := c.fast.sweep(now, c.cfg.TTL) +
		c.exact.sweep(now, c.cfg.TTL) +
		c.symbolic.sweep(now, c.cfg.TTL)
	if removed > 0 {
		c.logger.Debug("cache sweep", "removed", removed)
	}
	return removed
}

// ClearAll empties every tier. Counters are kept.
func (c *Cache) ClearAll() {
	c.fast.clear()
	c.exact.clear()
	c.symbolic.clear()
}

// Stats returns hit and miss counters for every tier.
func (c *Cache) Stats() Stats {
	f, e, s := c.fast.counters(), c.exact.counters(), c.symbolic.counters()
	return Stats{
		FastHits:       f.hits,
		FastMisses:     f.misses,
		ExactHits:      e.hits,
		ExactMisses:    e.misses,
		SymbolicHits:   s.hits,
		SymbolicMisses: s.misses,
		Cleanups:       f.evictions + e.evictions + s.evictions,
		TimeSaved: time.Duration(f.hits)*fastHitSaving +
			time.Duration(e.hits)*exactHitSaving +
			time.Duration(s.hits)*symbolicHitSaving,
	}
}

// Usage returns the current size and capacity of every tier.
func (c *Cache) Usage() Usage {
	return Usage{
		FastUsage:        c.fast.counters().size,
		FastCapacity:     c.cfg.FastCacheSize,
		ExactUsage:       c.exact.counters().size,
		ExactCapacity:    c.cfg.ExactCacheSize,
		SymbolicUsage:    c.symbolic.counters().size,
		SymbolicCapacity: c.cfg.SymbolicCacheSize,
	}
}

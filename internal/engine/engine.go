package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/config"
	"github.com/roach88/symcore/internal/intern"
	"github.com/roach88/symcore/internal/ir"
	"github.com/roach88/symcore/internal/simplify"
)

// Engine evaluates, simplifies and interns expressions through a shared
// compute cache and expression pool.
//
// Thread-safety model:
//   - Evaluate, Simplify, Intern and the stats accessors are safe from any
//     goroutine; the cache and pool lock internally.
//   - Run blocks and should be started at most once.
//
// INVARIANTS:
//   - A cached result is only returned for a key built from the same
//     canonical operands and operation.
//   - Context cancellation is checked on entry; a started computation runs
//     to completion.
type Engine struct {
	cfg       config.Config
	logger    *slog.Logger
	clock     cache.Clock
	sessions  SessionIDGenerator
	sessionID string
	seq       sequence
	recorder  SnapshotRecorder

	cache      *cache.Cache
	pool       *intern.Pool
	simplifier *simplify.Simplifier
	manager    *cache.Manager
	comparator intern.Comparator

	// poolSwept is the pool cleanup count from the most recent sweep.
	poolSwept atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine and every component it owns.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used for cache ages, TTL and sweeps.
// Tests pass a manual clock.
func WithClock(c cache.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithSessionGenerator replaces the default UUIDv7 session generator.
func WithSessionGenerator(g SessionIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.sessions = g
		}
	}
}

// WithRecorder makes Checkpoint write snapshots to r.
func WithRecorder(r SnapshotRecorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// New validates cfg and creates an Engine.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	cacheCfg, err := cfg.CacheSettings()
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	interval, err := cfg.Memory.Interval()
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		logger:   slog.Default(),
		clock:    cache.SystemClock,
		sessions: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessionID == "" {
		e.sessionID = e.sessions.Generate()
	}
	e.logger = e.logger.With("session", e.sessionID)

	e.cache = cache.New(cacheCfg, cache.WithClock(e.clock), cache.WithLogger(e.logger))
	e.pool = intern.NewPool(cfg.PoolSettings(), e.logger)
	e.simplifier = simplify.New(e.cache, e.pool,
		simplify.WithMaxIterations(cfg.Simplify.MaxIterations),
		simplify.WithLogger(e.logger))
	e.manager = cache.NewManager(e.cache, interval)
	e.manager.OnSweep(func(int) {
		e.poolSwept.Store(int64(e.pool.Cleanup()))
	})

	e.logger.Info("engine started",
		"cache_enabled", cacheCfg.Enabled,
		"sharing", cfg.Memory.EnableSharing,
		"sweep_interval", interval)
	return e, nil
}

// SessionID returns the identifier stamped on this engine's snapshots.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Evaluate substitutes vars into expr and computes an exact value.
//
// Binary and unary nodes go through the cache: operands that are small
// integers use the fast tier, everything else the exact tier. Results that
// cannot be reduced stay Symbolic. Division by an exact zero returns a
// DIVISION_BY_ZERO ComputeError.
func (e *Engine) Evaluate(ctx context.Context, expr ir.Expression, vars map[string]ir.Number) (ir.Number, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, NewInternalError("nil expression", nil)
	}
	if err := ir.Validate(expr); err != nil {
		return nil, classify(err, "")
	}
	e.manager.MaybeSweep()
	return e.evaluate(expr, vars)
}

func (e *Engine) evaluate(expr ir.Expression, vars map[string]ir.Number) (ir.Number, error) {
	switch x := expr.(type) {
	case ir.Binary:
		l, err := e.evaluate(x.Left, vars)
		if err != nil {
			return nil, err
		}
		r, err := e.evaluate(x.Right, vars)
		if err != nil {
			return nil, err
		}
		return e.binary(x.Op, l, r)
	case ir.Unary:
		v, err := e.evaluate(x.Operand, vars)
		if err != nil {
			return nil, err
		}
		return e.unary(x.Op, v)
	}
	v, err := ir.EvaluateExact(expr, vars)
	if err != nil {
		return nil, classify(err, "")
	}
	return v, nil
}

// Simplify rewrites expr to a simpler equivalent form. Results are cached
// in the symbolic tier.
func (e *Engine) Simplify(ctx context.Context, expr ir.Expression) (ir.Expression, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, NewInternalError("nil expression", nil)
	}
	e.manager.MaybeSweep()
	out, err := e.simplifier.Simplify(expr)
	if err != nil {
		return nil, classify(err, simplify.Operation)
	}
	return out, nil
}

// Intern returns a shared handle for expr. Structurally equal expressions
// interned while sharing is enabled get the same instance.
func (e *Engine) Intern(expr ir.Expression) (*intern.Shared, error) {
	if expr == nil {
		return nil, NewInternalError("nil expression", nil)
	}
	s, err := e.pool.CreateShared(expr)
	if err != nil {
		return nil, classify(err, "intern")
	}
	return s, nil
}

// Equivalent reports whether two handles hold structurally equal
// expressions, checking instance identity and hashes before walking.
func (e *Engine) Equivalent(a, b *intern.Shared) bool {
	return e.comparator.Equal(a, b)
}

// CacheStats returns per-tier hit and miss counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// CacheUsage returns per-tier occupancy.
func (e *Engine) CacheUsage() cache.Usage {
	return e.cache.Usage()
}

// MemoryStats returns expression pool counters.
func (e *Engine) MemoryStats() intern.Stats {
	return e.pool.Stats()
}

// ComparatorStats returns how Equivalent decided its comparisons.
func (e *Engine) ComparatorStats() intern.ComparatorStats {
	return e.comparator.Stats()
}

// ClearCache empties every cache tier. Hit and miss counters are kept.
func (e *Engine) ClearCache() {
	e.cache.ClearAll()
	e.logger.Info("cache cleared")
}

// Cleanup sweeps expired cache entries and drops pool entries with no live
// handles. It returns how many cache entries and pool entries were removed.
func (e *Engine) Cleanup() (cacheRemoved, poolRemoved int) {
	cacheRemoved = e.manager.ForceSweep()
	return cacheRemoved, int(e.poolSwept.Load())
}

// Run performs periodic sweeps until ctx is cancelled. It returns the
// context error.
func (e *Engine) Run(ctx context.Context) error {
	return e.manager.Run(ctx)
}

// now is the engine clock reading.
func (e *Engine) now() time.Time {
	return e.clock.Now()
}

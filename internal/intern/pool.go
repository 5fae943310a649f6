package intern

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/symcore/internal/ir"
)

// DefaultMaxPoolSize bounds the pool when Config leaves it unset.
const DefaultMaxPoolSize = 5000

// Config controls sharing.
type Config struct {
	// EnableSharing turns interning on. When false every CreateShared call
	// returns a fresh, unpooled instance.
	EnableSharing bool

	// MaxPoolSize is the maximum number of pooled instances.
	MaxPoolSize int
}

// DefaultConfig returns sharing enabled with the default pool bound.
func DefaultConfig() Config {
	return Config{EnableSharing: true, MaxPoolSize: DefaultMaxPoolSize}
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Active      int    `json:"active"`       // pooled instances with live handles
	Pooled      int    `json:"pooled"`       // all pooled instances
	Hits        uint64 `json:"hits"`         // CreateShared returned an existing instance
	Misses      uint64 `json:"misses"`       // CreateShared created a new instance
	CowTriggers uint64 `json:"cow_triggers"` // MakeMut copied a shared instance
	Cleanups    uint64 `json:"cleanups"`     // instances removed by Cleanup
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	cowTriggers atomic.Uint64
	cleanups    atomic.Uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithHasher replaces the structural hash used for bucketing.
// Lookups still verify full structural equality, so any function is safe.
func WithHasher(h func(ir.Expression) (uint64, error)) Option {
	return func(p *Pool) {
		p.hasher = h
	}
}

// Pool maps structural hashes to canonical instances.
//
// Thread-safety: all pool operations are guarded by a single mutex.
type Pool struct {
	cfg    Config
	logger *slog.Logger
	hasher func(ir.Expression) (uint64, error)

	mu      sync.Mutex
	buckets map[uint64][]*instance
	size    int

	stats counters
}

// NewPool creates an empty pool. A nil logger uses slog.Default().
func NewPool(cfg Config, logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = DefaultMaxPoolSize
	}
	p := &Pool{
		cfg:     cfg,
		logger:  logger,
		hasher:  ir.StructuralHash,
		buckets: make(map[uint64][]*instance),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateShared returns a handle on the canonical instance for expr.
//
// Candidates sharing the hash are compared structurally, so a hash
// collision never yields the wrong instance. On a miss the expression is
// pooled unless the pool is full, in which case the handle is unpooled.
func (p *Pool) CreateShared(expr ir.Expression) (*Shared, error) {
	h, err := p.hasher(expr)
	if err != nil {
		return nil, fmt.Errorf("intern: %w", err)
	}
	if !p.cfg.EnableSharing {
		return newShared(p, newInstance(expr, h, true, p.hasher)), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, cand := range p.buckets[h] {
		if ir.Equal(cand.expr, expr) {
			p.stats.hits.Add(1)
			return newShared(p, cand), nil
		}
	}
	p.stats.misses.Add(1)

	inst := newInstance(expr, h, true, p.hasher)
	if p.size >= p.cfg.MaxPoolSize {
		p.cleanupLocked()
	}
	if p.size >= p.cfg.MaxPoolSize {
		p.logger.Debug("intern pool full, returning unpooled instance",
			"max_pool_size", p.cfg.MaxPoolSize)
		return newShared(p, inst), nil
	}
	inst.pooled = true
	p.buckets[h] = append(p.buckets[h], inst)
	p.size++
	return newShared(p, inst), nil
}

// Cleanup removes pooled instances that no handle references and returns
// how many were removed.
func (p *Pool) Cleanup() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleanupLocked()
}

func (p *Pool) cleanupLocked() int {
	removed := 0
	for h, bucket := range p.buckets {
		kept := bucket[:0]
		for _, inst := range bucket {
			if inst.refs.Load() <= 0 {
				inst.pooled = false
				removed++
				continue
			}
			kept = append(kept, inst)
		}
		if len(kept) == 0 {
			delete(p.buckets, h)
			continue
		}
		clear(bucket[len(kept):])
		p.buckets[h] = kept
	}
	p.size -= removed
	if removed > 0 {
		p.stats.cleanups.Add(uint64(removed))
		p.logger.Debug("intern pool cleanup", "removed", removed, "pooled", p.size)
	}
	return removed
}

// ClearAll empties the pool. Existing handles stay valid but are no longer
// reachable through CreateShared.
func (p *Pool) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, bucket := range p.buckets {
		for _, inst := range bucket {
			inst.pooled = false
		}
	}
	clear(p.buckets)
	p.size = 0
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	active := 0
	for _, bucket := range p.buckets {
		for _, inst := range bucket {
			if inst.refs.Load() > 0 {
				active++
			}
		}
	}
	pooled := p.size
	p.mu.Unlock()

	return Stats{
		Active:      active,
		Pooled:      pooled,
		Hits:        p.stats.hits.Load(),
		Misses:      p.stats.misses.Load(),
		CowTriggers: p.stats.cowTriggers.Load(),
		Cleanups:    p.stats.cleanups.Load(),
	}
}

// Len returns the number of pooled instances.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// detachUnique removes inst from the pool if exactly one handle refers to
// it. It reports whether inst is uniquely owned.
func (p *Pool) detachUnique(inst *instance) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if inst.refs.Load() != 1 {
		return false
	}
	if inst.pooled {
		// Pooled instances are never edited, so their hash is current.
		p.removeLocked(inst.hash, inst)
	}
	return true
}

func (p *Pool) removeLocked(h uint64, inst *instance) bool {
	bucket := p.buckets[h]
	for i, cand := range bucket {
		if cand != inst {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(p.buckets, h)
		} else {
			p.buckets[h] = bucket
		}
		inst.pooled = false
		p.size--
		return true
	}
	return false
}

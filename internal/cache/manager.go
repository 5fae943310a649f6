package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultSweepInterval is how often a Manager sweeps expired entries.
const DefaultSweepInterval = 5 * time.Minute

// Manager runs periodic TTL sweeps over a Cache, either in-line through
// MaybeSweep or in the background through Run.
type Manager struct {
	cache *Cache

	mu        sync.Mutex
	interval  time.Duration
	lastSweep time.Time
	onSweep   []func(removed int)
}

// NewManager creates a manager for c. A non-positive interval uses
// DefaultSweepInterval.
func NewManager(c *Cache, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Manager{
		cache:     c,
		interval:  interval,
		lastSweep: c.clock.Now(),
	}
}

// Cache returns the managed cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// OnSweep registers fn to run after every sweep with the number of cache
// entries removed.
func (m *Manager) OnSweep(fn func(removed int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSweep = append(m.onSweep, fn)
}

// MaybeSweep sweeps when the interval has elapsed since the last sweep.
// It reports whether a sweep ran.
func (m *Manager) MaybeSweep() (int, bool) {
	m.mu.Lock()
	due := m.cache.clock.Now().Sub(m.lastSweep) >= m.interval
	m.mu.Unlock()
	if !due {
		return 0, false
	}
	return m.ForceSweep(), true
}

// ForceSweep sweeps immediately.
func (m *Manager) ForceSweep() int {
	removed := m.cache.SweepExpired()

	m.mu.Lock()
	m.lastSweep = m.cache.clock.Now()
	hooks := slices.Clone(m.onSweep)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(removed)
	}
	m.cache.logger.Info("cache sweep complete", "removed", removed)
	return removed
}

// Run sweeps on every interval tick until ctx is cancelled and returns the
// context error.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	interval := m.interval
	m.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.ForceSweep()
		}
	}
}

package cache

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// tier is one size-bounded map with its own lock and counters.
type tier[K comparable, V any] struct {
	name     string
	capacity int

	mu        sync.Mutex
	entries   map[K]*Entry[V]
	seq       uint64
	hits      uint64
	misses    uint64
	evictions uint64
}

func newTier[K comparable, V any](name string, capacity int) *tier[K, V] {
	return &tier[K, V]{
		name:     name,
		capacity: capacity,
		entries:  make(map[K]*Entry[V]),
	}
}

// get returns the live value for key. An expired entry is removed and
// counted as a miss.
func (t *tier[K, V]) get(key K, now time.Time, ttl time.Duration) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if ok && e.Expired(now, ttl) {
		delete(t.entries, key)
		ok = false
	}
	if !ok {
		t.misses++
		var zero V
		return zero, false
	}
	e.access(now)
	t.hits++
	return e.Value, true
}

// put stores v under key and returns the number of entries evicted to
// make room. Replacing an existing key never evicts.
func (t *tier[K, V]) put(key K, v V, cost uint32, now time.Time) int {
	if t.capacity <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	if _, exists := t.entries[key]; exists {
		t.entries[key] = newEntry(v, cost, now, t.seq)
		return 0
	}

	evicted := 0
	if len(t.entries) >= t.capacity {
		evicted = t.evictLocked(retainTarget(t.capacity)-1, now)
	}
	t.entries[key] = newEntry(v, cost, now, t.seq)
	return evicted
}

// retainTarget is ceil(0.75 * capacity).
func retainTarget(capacity int) int {
	return (3*capacity + 3) / 4
}

type ranked[K comparable] struct {
	key      K
	priority float64
	last     time.Time
	seq      uint64
}

// evictLocked removes the lowest priority entries until at most keep
// remain. Ties go to the least recently accessed, then the oldest insert.
func (t *tier[K, V]) evictLocked(keep int, now time.Time) int {
	if keep < 0 {
		keep = 0
	}
	excess := len(t.entries) - keep
	if excess <= 0 {
		return 0
	}

	items := make([]ranked[K], 0, len(t.entries))
	for k, e := range t.entries {
		items = append(items, ranked[K]{key: k, priority: e.Priority(now), last: e.LastAccessed, seq: e.seq})
	}
	slices.SortFunc(items, func(a, b ranked[K]) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}
		if c := a.last.Compare(b.last); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, it := range items[:excess] {
		delete(t.entries, it.key)
	}
	t.evictions++
	return excess
}

// sweep removes every expired entry.
func (t *tier[K, V]) sweep(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, e := range t.entries {
		if e.Expired(now, ttl) {
			delete(t.entries, k)
			removed++
		}
	}
	return removed
}

func (t *tier[K, V]) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.entries)
}

// peek returns a copy of the entry without recording an access.
func (t *tier[K, V]) peek(key K) (Entry[V], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return Entry[V]{}, false
	}
	return *e, true
}

type tierCounters struct {
	size      int
	hits      uint64
	misses    uint64
	evictions uint64
}

func (t *tier[K, V]) counters() tierCounters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tierCounters{size: len(t.entries), hits: t.hits, misses: t.misses, evictions: t.evictions}
}

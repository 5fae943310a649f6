package cache

import "time"

// Entry is a cached value with the bookkeeping used for eviction.
type Entry[V any] struct {
	Value        V
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  uint64
	ComputeCost  uint32

	seq uint64 // insertion order, breaks priority ties
}

func newEntry[V any](v V, cost uint32, now time.Time, seq uint64) *Entry[V] {
	return &Entry[V]{
		Value:        v,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
		ComputeCost:  cost,
		seq:          seq,
	}
}

func (e *Entry[V]) access(now time.Time) {
	e.LastAccessed = now
	e.AccessCount++
}

// Priority ranks the entry for eviction; lower values are evicted first.
func (e *Entry[V]) Priority(now time.Time) float64 {
	age := now.Sub(e.LastAccessed).Seconds()
	if age < 0 {
		age = 0
	}
	return float64(e.AccessCount) * float64(e.ComputeCost) / (age + 1)
}

// Expired reports whether the entry is older than ttl. A zero ttl never
// expires.
func (e *Entry[V]) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.CreatedAt) > ttl
}

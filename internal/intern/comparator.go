package intern

import (
	"sync/atomic"

	"github.com/roach88/symcore/internal/ir"
)

// Comparator tests shared expressions for structural equality, trying the
// cheap checks first: instance identity, then hash, then a deep walk.
type Comparator struct {
	identity atomic.Uint64
	rejected atomic.Uint64
	deep     atomic.Uint64
}

// ComparatorStats counts how each comparison was decided.
type ComparatorStats struct {
	IdentityHits uint64 `json:"identity_hits"`
	HashRejects  uint64 `json:"hash_rejects"`
	DeepCompares uint64 `json:"deep_compares"`
}

// Equal reports whether a and b hold structurally equal expressions.
func (c *Comparator) Equal(a, b *Shared) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.SameInstance(b) {
		c.identity.Add(1)
		return true
	}
	if a.Hash() != b.Hash() {
		c.rejected.Add(1)
		return false
	}
	c.deep.Add(1)
	return ir.Equal(a.Expr(), b.Expr())
}

// Stats returns the comparison counters.
func (c *Comparator) Stats() ComparatorStats {
	return ComparatorStats{
		IdentityHits: c.identity.Load(),
		HashRejects:  c.rejected.Load(),
		DeepCompares: c.deep.Load(),
	}
}

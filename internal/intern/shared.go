package intern

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/roach88/symcore/internal/ir"
)

// ID identifies an instance. IDs come from a process-wide counter and are
// never reused.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("expr#%d", uint64(id))
}

var nextID atomic.Uint64

// instance is one canonical expression. refs counts external handles only.
type instance struct {
	id   ID
	refs atomic.Int64

	mu       sync.Mutex
	expr     ir.Expression
	hash     uint64
	hashOK   bool
	hashFunc func(ir.Expression) (uint64, error)

	// pooled is guarded by the owning pool's mutex.
	pooled bool
}

func newInstance(expr ir.Expression, hash uint64, hashOK bool, hashFunc func(ir.Expression) (uint64, error)) *instance {
	return &instance{
		id:       ID(nextID.Add(1)),
		expr:     expr,
		hash:     hash,
		hashOK:   hashOK,
		hashFunc: hashFunc,
	}
}

// Shared is a counted reference to a canonical expression instance.
//
// A handle that is garbage collected without Release gives its reference
// back automatically.
type Shared struct {
	pool    *Pool
	inst    *instance
	cleanup runtime.Cleanup
	done    atomic.Bool
}

func newShared(pool *Pool, inst *instance) *Shared {
	inst.refs.Add(1)
	s := &Shared{pool: pool, inst: inst}
	s.cleanup = runtime.AddCleanup(s, releaseInstance, inst)
	return s
}

func releaseInstance(inst *instance) {
	inst.refs.Add(-1)
}

// Expr returns the shared expression. Callers must not mutate it; use
// MakeMut for edits.
func (s *Shared) Expr() ir.Expression {
	s.inst.mu.Lock()
	defer s.inst.mu.Unlock()
	return s.inst.expr
}

// ID returns the stable identifier of the underlying instance.
func (s *Shared) ID() ID {
	return s.inst.id
}

// Hash returns the structural hash of the expression. It is computed lazily
// and recomputed after a mutation. A malformed expression hashes to zero.
func (s *Shared) Hash() uint64 {
	inst := s.inst
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !inst.hashOK {
		h, err := inst.hashFunc(inst.expr)
		if err != nil {
			return 0
		}
		inst.hash, inst.hashOK = h, true
	}
	return inst.hash
}

// RefCount returns the number of live handles on the instance.
func (s *Shared) RefCount() int64 {
	return s.inst.refs.Load()
}

// IsUnique reports whether s is the only handle on its instance.
func (s *Shared) IsUnique() bool {
	return s.inst.refs.Load() == 1
}

// Clone returns a new handle on the same instance.
func (s *Shared) Clone() *Shared {
	if s.done.Load() {
		panic("intern: Clone of released handle")
	}
	return newShared(s.pool, s.inst)
}

// SameInstance reports whether s and other point to the same instance.
func (s *Shared) SameInstance(other *Shared) bool {
	return other != nil && s.inst == other.inst
}

// Release gives back the handle's reference. Releasing twice is a no-op.
func (s *Shared) Release() {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.cleanup.Stop()
	releaseInstance(s.inst)
}

// MakeMut returns a pointer to the expression for in-place editing.
//
// When s is the only handle the instance is detached from the pool and
// edited in place. Otherwise the expression is deep-copied into a fresh
// instance owned by s alone, so other handles keep observing the old value.
// Call MakeMut before every edit.
func (s *Shared) MakeMut() *ir.Expression {
	if s.done.Load() {
		panic("intern: MakeMut of released handle")
	}
	if s.pool.detachUnique(s.inst) {
		return s.invalidate()
	}

	old := s.inst
	old.mu.Lock()
	cp := ir.Clone(old.expr)
	old.mu.Unlock()

	fresh := newInstance(cp, 0, false, old.hashFunc)
	fresh.refs.Add(1)
	s.cleanup.Stop()
	s.inst = fresh
	s.cleanup = runtime.AddCleanup(s, releaseInstance, fresh)
	releaseInstance(old)
	s.pool.stats.cowTriggers.Add(1)

	return s.invalidate()
}

// GetMut returns a pointer for in-place editing only when s is the sole
// handle. It never copies.
func (s *Shared) GetMut() (*ir.Expression, bool) {
	if s.done.Load() || !s.pool.detachUnique(s.inst) {
		return nil, false
	}
	return s.invalidate(), true
}

// IntoOwned releases s and returns an expression the caller owns outright.
// The pooled value is copied unless s was its sole handle.
func (s *Shared) IntoOwned() ir.Expression {
	var out ir.Expression
	if !s.done.Load() && s.pool.detachUnique(s.inst) {
		s.inst.mu.Lock()
		out = s.inst.expr
		s.inst.mu.Unlock()
	} else {
		out = ir.Clone(s.Expr())
	}
	s.Release()
	return out
}

func (s *Shared) invalidate() *ir.Expression {
	s.inst.mu.Lock()
	s.inst.hashOK = false
	s.inst.mu.Unlock()
	return &s.inst.expr
}

package intern

import (
	"io"
	"log/slog"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/ir"
)

func setupTestPool(t *testing.T, cfg Config, opts ...Option) *Pool {
	t.Helper()
	return NewPool(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func mustShare(t *testing.T, p *Pool, e ir.Expression) *Shared {
	t.Helper()
	s, err := p.CreateShared(e)
	require.NoError(t, err)
	return s
}

func TestCreateSharedInternsEqualExpressions(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())

	a := mustShare(t, p, ir.Add(ir.Variable("x"), ir.Int(1)))
	b := mustShare(t, p, ir.Add(ir.Variable("x"), ir.Int(1)))
	c := mustShare(t, p, ir.Add(ir.Variable("x"), ir.Int(2)))

	assert.True(t, a.SameInstance(b), "structurally equal expressions share one instance")
	assert.Equal(t, a.ID(), b.ID())
	assert.False(t, a.SameInstance(c))
	assert.Equal(t, int64(2), a.RefCount())
	assert.False(t, a.IsUnique())
	assert.True(t, c.IsUnique())

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, 2, stats.Pooled)
	assert.Equal(t, 2, stats.Active)
	assert.InDelta(t, 1.0/3.0, stats.HitRate(), 1e-12)

	runtime.KeepAlive(b)
	runtime.KeepAlive(c)
}

func TestCreateSharedResolvesHashCollisions(t *testing.T) {
	collide := func(ir.Expression) (uint64, error) { return 42, nil }
	p := setupTestPool(t, DefaultConfig(), WithHasher(collide))

	x := mustShare(t, p, ir.Variable("x"))
	y := mustShare(t, p, ir.Variable("y"))
	x2 := mustShare(t, p, ir.Variable("x"))
	y2 := mustShare(t, p, ir.Variable("y"))

	assert.False(t, x.SameInstance(y), "colliding hashes must not merge distinct expressions")
	assert.True(t, x.SameInstance(x2))
	assert.True(t, y.SameInstance(y2))
	assert.Equal(t, "x", x2.Expr().String())
	assert.Equal(t, "y", y2.Expr().String())
	assert.Equal(t, 2, p.Len())
}

func TestCreateSharedRejectsMalformed(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	_, err := p.CreateShared(nil)
	assert.Error(t, err)
}

func TestMakeMutCopiesSharedInstance(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	orig := ir.Mul(ir.Int(2), ir.Variable("x"))

	a := mustShare(t, p, orig)
	b := a.Clone()
	require.True(t, a.SameInstance(b))

	m := b.MakeMut()
	*m = ir.Int(9)

	assert.Equal(t, "(2 * x)", a.Expr().String(), "other handles keep the old value")
	assert.Equal(t, "9", b.Expr().String())
	assert.False(t, a.SameInstance(b))
	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, a.IsUnique())
	assert.True(t, b.IsUnique())
	assert.Equal(t, uint64(1), p.Stats().CowTriggers)

	// The pooled instance is still the canonical one for the old value.
	c := mustShare(t, p, orig)
	assert.True(t, a.SameInstance(c))
}

func TestMakeMutUniqueEditsInPlace(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	a := mustShare(t, p, ir.Variable("x"))
	id := a.ID()

	m := a.MakeMut()
	*m = ir.Variable("y")

	assert.Equal(t, id, a.ID(), "no copy for a unique handle")
	assert.Equal(t, uint64(0), p.Stats().CowTriggers)
	assert.Equal(t, 0, p.Len(), "edited instance leaves the pool")
	assert.Equal(t, ir.MustStructuralHash(ir.Variable("y")), a.Hash(), "hash follows the edit")

	b := mustShare(t, p, ir.Variable("x"))
	assert.False(t, a.SameInstance(b))
}

func TestGetMut(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	a := mustShare(t, p, ir.Variable("x"))
	b := a.Clone()

	_, ok := a.GetMut()
	assert.False(t, ok, "GetMut never copies a shared instance")

	b.Release()
	m, ok := a.GetMut()
	require.True(t, ok)
	*m = ir.Int(1)
	assert.Equal(t, "1", a.Expr().String())
}

func TestIntoOwned(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	a := mustShare(t, p, ir.Call("f", ir.Variable("x")))
	b := a.Clone()

	owned := b.IntoOwned()
	assert.True(t, ir.Equal(a.Expr(), owned))
	assert.Equal(t, int64(1), a.RefCount(), "IntoOwned releases the handle")

	owned = a.IntoOwned()
	assert.Equal(t, "f(x)", owned.String())
	assert.Equal(t, 0, p.Len())
}

func TestReleaseAndCleanup(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	a := mustShare(t, p, ir.Variable("a"))
	b := mustShare(t, p, ir.Variable("b"))

	a.Release()
	a.Release()
	assert.Equal(t, int64(0), a.RefCount(), "double release is a no-op")

	assert.Equal(t, 1, p.Cleanup())
	stats := p.Stats()
	assert.Equal(t, 1, stats.Pooled)
	assert.Equal(t, uint64(1), stats.Cleanups)

	c := mustShare(t, p, ir.Variable("a"))
	assert.Greater(t, uint64(c.ID()), uint64(a.ID()), "IDs are never reused")
	assert.Equal(t, 0, p.Cleanup())

	runtime.KeepAlive(b)
}

func TestPoolFullReturnsUnpooledHandle(t *testing.T) {
	p := setupTestPool(t, Config{EnableSharing: true, MaxPoolSize: 2})
	a := mustShare(t, p, ir.Variable("a"))
	b := mustShare(t, p, ir.Variable("b"))
	c := mustShare(t, p, ir.Variable("c"))

	assert.Equal(t, 2, p.Len())
	c2 := mustShare(t, p, ir.Variable("c"))
	assert.False(t, c.SameInstance(c2), "c was never pooled")

	// Releasing a handle makes room on the next miss.
	a.Release()
	d := mustShare(t, p, ir.Variable("d"))
	d2 := mustShare(t, p, ir.Variable("d"))
	assert.True(t, d.SameInstance(d2))
	assert.Equal(t, 2, p.Len())

	runtime.KeepAlive(b)
}

func TestSharingDisabled(t *testing.T) {
	p := setupTestPool(t, Config{EnableSharing: false})
	a := mustShare(t, p, ir.Variable("x"))
	b := mustShare(t, p, ir.Variable("x"))

	assert.False(t, a.SameInstance(b))
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestClearAll(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	a := mustShare(t, p, ir.Variable("x"))
	p.ClearAll()

	assert.Equal(t, 0, p.Len())
	assert.Equal(t, "x", a.Expr().String(), "handles survive ClearAll")

	b := mustShare(t, p, ir.Variable("x"))
	assert.False(t, a.SameInstance(b))
}

func TestConcurrentCreateShared(t *testing.T) {
	p := setupTestPool(t, DefaultConfig())
	const workers = 16

	handles := make([]*Shared, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := p.CreateShared(ir.Pow(ir.Variable("x"), ir.Int(2)))
			if err == nil {
				handles[i] = s
			}
		}()
	}
	wg.Wait()

	for _, h := range handles {
		require.NotNil(t, h)
		assert.True(t, handles[0].SameInstance(h))
	}
	assert.Equal(t, int64(workers), handles[0].RefCount())
	assert.Equal(t, uint64(workers-1), p.Stats().Hits)
}

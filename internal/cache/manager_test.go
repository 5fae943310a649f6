package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/ir"
)

func TestManagerMaybeSweep(t *testing.T) {
	cfg := sizedConfig(10)
	cfg.TTL = time.Minute
	c, clock := setupTestCache(t, cfg)
	m := NewManager(c, 5*time.Minute)

	var hookCalls int
	m.OnSweep(func(removed int) { hookCalls++ })

	c.PutFast(BinaryKey(1, 1, ir.OpAdd), 2, 1)
	clock.Advance(2 * time.Minute)

	_, ran := m.MaybeSweep()
	assert.False(t, ran, "interval not elapsed")
	assert.Equal(t, 1, c.Usage().FastUsage)

	clock.Advance(3 * time.Minute)
	removed, ran := m.MaybeSweep()
	require.True(t, ran)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, hookCalls)

	_, ran = m.MaybeSweep()
	assert.False(t, ran, "interval restarts after a sweep")
}

func TestManagerForceSweep(t *testing.T) {
	cfg := sizedConfig(10)
	cfg.TTL = time.Second
	c, clock := setupTestCache(t, cfg)
	m := NewManager(c, 0)

	c.PutFast(BinaryKey(1, 1, ir.OpAdd), 2, 1)
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, m.ForceSweep())
	assert.Equal(t, 0, m.ForceSweep())
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	c, _ := setupTestCache(t, DefaultConfig())
	m := NewManager(c, time.Millisecond)

	var sweeps atomic.Int32
	m.OnSweep(func(int) { sweeps.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	assert.Eventually(t, func() bool { return sweeps.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestManagerHooksRunOutsideLock(t *testing.T) {
	c, _ := setupTestCache(t, sizedConfig(10))
	m := NewManager(c, time.Minute)

	var calls []int
	m.OnSweep(func(removed int) {
		calls = append(calls, removed)
		m.OnSweep(func(int) { calls = append(calls, -1) })
	})

	m.ForceSweep()
	assert.Equal(t, []int{0}, calls, "hooks added during a sweep wait for the next one")

	m.ForceSweep()
	assert.Equal(t, []int{0, 0, -1}, calls)
}

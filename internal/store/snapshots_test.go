package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/config"
	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/ir"
	"github.com/roach88/symcore/internal/testutil"
)

func TestRecordSnapshotRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := createTestSnapshot("session-a", 3)
	require.NoError(t, s.RecordSnapshot(ctx, want))

	got, err := s.LatestSnapshot(ctx, "session-a")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordSnapshotIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	snap := createTestSnapshot("session-a", 1)
	require.NoError(t, s.RecordSnapshot(ctx, snap))
	snap.Cache.FastHits = 999
	require.NoError(t, s.RecordSnapshot(ctx, snap))

	snaps, err := s.ListSnapshots(ctx, "session-a", 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint64(1), snaps[0].Cache.FastHits, "first write wins")
}

func TestRecordSnapshotRejectsEmptySession(t *testing.T) {
	s := createTestStore(t)
	err := s.RecordSnapshot(context.Background(), createTestSnapshot("", 1))
	assert.Error(t, err)
}

func TestListSnapshots(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, seq := range []int64{2, 1, 4, 3} {
		require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("a", seq)))
	}
	require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("b", 1)))

	seqs := func(snaps []engine.Snapshot) []int64 {
		out := make([]int64, len(snaps))
		for i, snap := range snaps {
			out[i] = snap.Seq
		}
		return out
	}

	all, err := s.ListSnapshots(ctx, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, seqs(all))

	recent, err := s.ListSnapshots(ctx, "a", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, seqs(recent), "most recent, oldest first")

	none, err := s.ListSnapshots(ctx, "missing", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	// Across sessions: ordered by taken_at, then session id.
	every, err := s.ListSnapshots(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, every, 5)
	assert.Equal(t, "a", every[0].SessionID)
	assert.Equal(t, "b", every[1].SessionID)
	assert.Equal(t, int64(1), every[1].Seq)
}

func TestLatestSnapshotMissing(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LatestSnapshot(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoSnapshots)
}

func TestSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("early", 1)))
	require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("early", 2)))
	require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("late", 5)))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "early", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Snapshots)
	assert.Equal(t, testutil.Epoch.Add(1e9), sessions[0].StartedAt)
	assert.Equal(t, ir.EngineVersion, sessions[0].EngineVersion)
	assert.Equal(t, ir.WireVersion, sessions[0].WireVersion)
	assert.Equal(t, "late", sessions[1].ID)
}

func TestEngineCheckpointWritesJournal(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e, err := engine.New(config.Default(),
		engine.WithClock(testutil.NewManualClock(testutil.Epoch)),
		engine.WithSessionID("engine-session"),
		engine.WithRecorder(s))
	require.NoError(t, err)

	_, err = e.Evaluate(ctx, ir.Add(ir.Int(1), ir.Int(2)), nil)
	require.NoError(t, err)
	snap, err := e.Checkpoint(ctx)
	require.NoError(t, err)

	got, err := s.LatestSnapshot(ctx, "engine-session")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, uint64(1), got.Cache.FastMisses)
}

func TestPrune(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for seq := int64(1); seq <= 4; seq++ {
		require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("a", seq)))
	}
	require.NoError(t, s.RecordSnapshot(ctx, createTestSnapshot("b", 1)))

	removed, err := s.Prune(ctx, testutil.Epoch.Add(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed, "a#1, a#2 and b#1")

	left, err := s.ListSnapshots(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, int64(3), left[0].Seq)

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1, "b has no snapshots left")
	assert.Equal(t, "a", sessions[0].ID)

	removed, err = s.Prune(ctx, testutil.Epoch)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

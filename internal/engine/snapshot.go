package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/intern"
)

// Snapshot is a point-in-time copy of engine statistics. It never carries
// cached values or expressions.
type Snapshot struct {
	SessionID string       `json:"session_id"`
	Seq       int64        `json:"seq"`
	TakenAt   time.Time    `json:"taken_at"`
	Cache     cache.Stats  `json:"cache"`
	Usage     cache.Usage  `json:"usage"`
	Memory    intern.Stats `json:"memory"`
}

// SnapshotRecorder persists snapshots. store.Store implements it.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, snap Snapshot) error
}

// Snapshot captures the current statistics. Each call gets the next
// sequence number for this engine.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		SessionID: e.sessionID,
		Seq:       e.seq.next(),
		TakenAt:   e.now().UTC(),
		Cache:     e.cache.Stats(),
		Usage:     e.cache.Usage(),
		Memory:    e.pool.Stats(),
	}
}

// LastSeq returns the sequence number of the most recent snapshot, or 0.
func (e *Engine) LastSeq() int64 {
	return e.seq.current()
}

// Checkpoint takes a snapshot and hands it to the recorder configured with
// WithRecorder. Without a recorder it only returns the snapshot.
func (e *Engine) Checkpoint(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	snap := e.Snapshot()
	if e.recorder == nil {
		return snap, nil
	}
	if err := e.recorder.RecordSnapshot(ctx, snap); err != nil {
		return snap, fmt.Errorf("record snapshot: %w", err)
	}
	e.logger.Debug("snapshot recorded", "seq", snap.Seq)
	return snap, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/ir"
)

// ErrNoSnapshots is returned by LatestSnapshot when a session has no rows.
var ErrNoSnapshots = errors.New("no snapshots recorded")

// Session describes one engine session in the journal.
type Session struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	EngineVersion string    `json:"engine_version"`
	WireVersion   string    `json:"wire_version"`
	Snapshots     int       `json:"snapshots"`
}

// timeLayout has fixed-width fractions so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const snapshotColumns = `
	session_id, seq, taken_at,
	fast_hits, fast_misses, exact_hits, exact_misses, symbolic_hits, symbolic_misses,
	cache_cleanups, time_saved_ns,
	fast_usage, fast_capacity, exact_usage, exact_capacity, symbolic_usage, symbolic_capacity,
	pool_active, pool_pooled, pool_hits, pool_misses, pool_cow_triggers, pool_cleanups`

// RecordSnapshot appends snap to the journal, registering its session on
// first use. A snapshot whose (session, seq) already exists is ignored.
// Implements engine.SnapshotRecorder.
func (s *Store) RecordSnapshot(ctx context.Context, snap engine.Snapshot) error {
	if snap.SessionID == "" {
		return errors.New("record snapshot: empty session id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	defer tx.Rollback()

	takenAt := snap.TakenAt.UTC().Format(timeLayout)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, engine_version, wire_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, snap.SessionID, takenAt, ir.EngineVersion, ir.WireVersion)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}

	c, u, m := snap.Cache, snap.Usage, snap.Memory
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		snap.SessionID, snap.Seq, takenAt,
		int64(c.FastHits), int64(c.FastMisses),
		int64(c.ExactHits), int64(c.ExactMisses),
		int64(c.SymbolicHits), int64(c.SymbolicMisses),
		int64(c.Cleanups), c.TimeSaved.Nanoseconds(),
		u.FastUsage, u.FastCapacity,
		u.ExactUsage, u.ExactCapacity,
		u.SymbolicUsage, u.SymbolicCapacity,
		m.Active, m.Pooled, int64(m.Hits), int64(m.Misses),
		int64(m.CowTriggers), int64(m.Cleanups),
	)
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the most recent limit snapshots of session, oldest
// first. An empty session lists every session; limit <= 0 means no limit.
func (s *Store) ListSnapshots(ctx context.Context, session string, limit int) ([]engine.Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}

	var (
		rows *sql.Rows
		err  error
	)
	if session != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT * FROM (
				SELECT `+snapshotColumns+`
				FROM snapshots
				WHERE session_id = ?
				ORDER BY seq DESC
				LIMIT ?
			) ORDER BY seq ASC
		`, session, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT * FROM (
				SELECT `+snapshotColumns+`
				FROM snapshots
				ORDER BY taken_at DESC, session_id COLLATE BINARY DESC, seq DESC
				LIMIT ?
			) ORDER BY taken_at ASC, session_id COLLATE BINARY ASC, seq ASC
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []engine.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// LatestSnapshot returns the highest-seq snapshot of session, or
// ErrNoSnapshots.
func (s *Store) LatestSnapshot(ctx context.Context, session string) (engine.Snapshot, error) {
	snaps, err := s.ListSnapshots(ctx, session, 1)
	if err != nil {
		return engine.Snapshot{}, err
	}
	if len(snaps) == 0 {
		return engine.Snapshot{}, fmt.Errorf("session %q: %w", session, ErrNoSnapshots)
	}
	return snaps[0], nil
}

// Sessions lists every journaled session, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.engine_version, s.wire_version, COUNT(n.seq)
		FROM sessions s
		LEFT JOIN snapshots n ON n.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			sess    Session
			started string
		)
		if err := rows.Scan(&sess.ID, &started, &sess.EngineVersion, &sess.WireVersion, &sess.Snapshots); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func scanSnapshot(rows *sql.Rows) (engine.Snapshot, error) {
	var (
		snap      engine.Snapshot
		takenAt   string
		timeSaved int64
	)
	c, u, m := &snap.Cache, &snap.Usage, &snap.Memory
	err := rows.Scan(
		&snap.SessionID, &snap.Seq, &takenAt,
		&c.FastHits, &c.FastMisses,
		&c.ExactHits, &c.ExactMisses,
		&c.SymbolicHits, &c.SymbolicMisses,
		&c.Cleanups, &timeSaved,
		&u.FastUsage, &u.FastCapacity,
		&u.ExactUsage, &u.ExactCapacity,
		&u.SymbolicUsage, &u.SymbolicCapacity,
		&m.Active, &m.Pooled, &m.Hits, &m.Misses,
		&m.CowTriggers, &m.Cleanups,
	)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	if snap.TakenAt, err = time.Parse(timeLayout, takenAt); err != nil {
		return engine.Snapshot{}, fmt.Errorf("parse taken_at: %w", err)
	}
	c.TimeSaved = time.Duration(timeSaved)
	return snap, nil
}

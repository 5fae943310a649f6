package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/intern"
	"github.com/roach88/symcore/internal/testutil"
)

// createTestStore opens a store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSnapshot builds a snapshot whose counters are derived from seq
// so round trips can be checked field by field.
func createTestSnapshot(session string, seq int64) engine.Snapshot {
	n := uint64(seq)
	return engine.Snapshot{
		SessionID: session,
		Seq:       seq,
		TakenAt:   testutil.Epoch.Add(time.Duration(seq) * time.Second),
		Cache: cache.Stats{
			FastHits:       n,
			FastMisses:     n + 1,
			ExactHits:      n + 2,
			ExactMisses:    n + 3,
			SymbolicHits:   n + 4,
			SymbolicMisses: n + 5,
			Cleanups:       n + 6,
			TimeSaved:      time.Duration(seq) * time.Millisecond,
		},
		Usage: cache.Usage{
			FastUsage:        int(seq),
			FastCapacity:     1000,
			ExactUsage:       int(seq) * 2,
			ExactCapacity:    500,
			SymbolicUsage:    int(seq) * 3,
			SymbolicCapacity: 200,
		},
		Memory: intern.Stats{
			Active:      int(seq),
			Pooled:      int(seq) + 1,
			Hits:        n * 10,
			Misses:      n * 11,
			CowTriggers: n * 12,
			Cleanups:    n * 13,
		},
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

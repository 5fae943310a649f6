package engine

import (
	"github.com/google/uuid"
)

// SessionIDGenerator produces the identifier an Engine stamps on its
// snapshots.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 session IDs, so sessions
// in the statistics journal sort by start time.
//
// Thread-safety: safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string. It panics only if the system
// random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

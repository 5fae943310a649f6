package engine

import "sync/atomic"

// sequence stamps snapshots with a strictly increasing number so that
// journal rows from one session sort in the order they were taken, even
// when the wall clock does not advance between them.
type sequence struct {
	n atomic.Int64
}

// next returns the next sequence number, starting at 1.
func (s *sequence) next() int64 {
	return s.n.Add(1)
}

// current returns the last number handed out, or 0.
func (s *sequence) current() int64 {
	return s.n.Load()
}

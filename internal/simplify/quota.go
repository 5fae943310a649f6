package simplify

import "fmt"

// DefaultMaxIterations bounds the number of rewrite passes.
const DefaultMaxIterations = 32

// iterationQuota counts rewrite passes and refuses once the limit is hit.
//
// A spent quota is not an error for callers: Simplify returns the last
// form it reached.
type iterationQuota struct {
	max     int
	current int
}

func newIterationQuota(max int) *iterationQuota {
	return &iterationQuota{max: max}
}

// Check consumes one pass.
func (q *iterationQuota) Check() error {
	q.current++
	if q.current > q.max {
		return &quotaExceededError{Passes: q.current - 1, Limit: q.max}
	}
	return nil
}

// Used returns the number of passes consumed.
func (q *iterationQuota) Used() int {
	if q.current > q.max {
		return q.max
	}
	return q.current
}

type quotaExceededError struct {
	Passes int
	Limit  int
}

func (e *quotaExceededError) Error() string {
	return fmt.Sprintf("simplify: iteration limit %d reached after %d passes", e.Limit, e.Passes)
}

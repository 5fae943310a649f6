package simplify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/intern"
	"github.com/roach88/symcore/internal/ir"
)

// Operation is the symbolic cache operation name for simplification.
const Operation = "simplify"

// Option configures a Simplifier.
type Option func(*Simplifier)

// WithMaxIterations caps the rewrite passes. Non-positive values keep the
// default.
func WithMaxIterations(n int) Option {
	return func(s *Simplifier) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simplifier) {
		s.logger = l
	}
}

// Simplifier applies the rewrite rules. It is safe for concurrent use when
// its cache and pool are.
type Simplifier struct {
	cache         *cache.Cache
	pool          *intern.Pool
	maxIterations int
	logger        *slog.Logger
}

// New creates a simplifier. c and p may be nil, which disables memoization
// and interning respectively.
func New(c *cache.Cache, p *intern.Pool, opts ...Option) *Simplifier {
	s := &Simplifier{
		cache:         c,
		pool:          p,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxIterations returns the pass limit.
func (s *Simplifier) MaxIterations() int {
	return s.maxIterations
}

// Simplify returns a form of e that is semantically equal and no more
// complex. Malformed expressions are rejected.
func (s *Simplifier) Simplify(e ir.Expression) (ir.Expression, error) {
	if err := ir.Validate(e); err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}
	key, err := cache.NewSymbolicKey(e, Operation, nil)
	if err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}
	if s.cache != nil {
		if hit, ok := s.cache.GetSymbolic(key); ok {
			return hit, nil
		}
	}

	out, passes := s.rewrite(e)
	s.logger.Debug("simplified", "passes", passes, "before", ir.Complexity(e), "after", ir.Complexity(out))

	if s.cache != nil {
		s.cache.PutSymbolic(key, out, ir.CacheCost(e))
	}
	return out, nil
}

// SimplifyShared simplifies e and interns the result, so equal results
// obtained from different inputs share one instance. The caller owns the
// returned handle.
func (s *Simplifier) SimplifyShared(e ir.Expression) (*intern.Shared, error) {
	if s.pool == nil {
		return nil, errors.New("simplify: no intern pool configured")
	}
	out, err := s.Simplify(e)
	if err != nil {
		return nil, err
	}
	return s.pool.CreateShared(out)
}

// rewrite runs passes to a fixpoint or the iteration cap and returns the
// final form with the number of passes used.
func (s *Simplifier) rewrite(e ir.Expression) (ir.Expression, int) {
	quota := newIterationQuota(s.maxIterations)
	cur := e
	for {
		if err := quota.Check(); err != nil {
			s.logger.Debug("simplify stopped early", "error", err)
			return cur, quota.Used()
		}
		next := pass(cur)
		if ir.Equal(next, cur) {
			return cur, quota.Used()
		}
		cur = next
	}
}

// pass simplifies children, then rewrites the node once.
func pass(e ir.Expression) ir.Expression {
	switch x := e.(type) {
	case ir.Binary:
		return rewriteBinary(x.Op, pass(x.Left), pass(x.Right))
	case ir.Unary:
		return rewriteUnary(x.Op, pass(x.Operand))
	case ir.Func:
		return ir.Func{Name: x.Name, Args: passAll(x.Args)}
	case ir.Matrix:
		rows := make([][]ir.Expression, len(x.Rows))
		for i, row := range x.Rows {
			rows[i] = passAll(row)
		}
		return ir.Matrix{Rows: rows}
	case ir.Vector:
		return ir.Vector{Elems: passAll(x.Elems)}
	case ir.Set:
		return ir.Set{Elems: passAll(x.Elems)}
	case ir.Interval:
		return ir.Interval{
			Start:          pass(x.Start),
			End:            pass(x.End),
			StartInclusive: x.StartInclusive,
			EndInclusive:   x.EndInclusive,
		}
	}
	return e
}

func passAll(es []ir.Expression) []ir.Expression {
	if es == nil {
		return nil
	}
	out := make([]ir.Expression, len(es))
	for i, e := range es {
		out[i] = pass(e)
	}
	return out
}

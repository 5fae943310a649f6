package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/intern"
	"github.com/roach88/symcore/internal/ir"
	"github.com/roach88/symcore/internal/store"
	"github.com/roach88/symcore/internal/testutil"
)

// Harness executes scenario steps against one engine.
type Harness struct {
	engine  *engine.Engine
	clock   *testutil.ManualClock
	journal *store.Store
	logger  *slog.Logger

	// handles keeps interned values alive until the run ends.
	handles []*intern.Shared
}

// Run executes a scenario on a fresh engine with a manual clock, a fixed
// session ID and an in-memory journal, and returns the result.
//
// An error is returned only when the scenario cannot be run at all.
// Expectation and assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.engineConfig()
	if err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}

	journal, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer journal.Close()

	clock := testutil.NewManualClock(testutil.Epoch)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := engine.New(cfg,
		engine.WithClock(clock),
		engine.WithLogger(logger),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		engine.WithRecorder(journal),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{engine: eng, clock: clock, journal: journal, logger: logger}
	defer h.release()

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		n := max(step.Repeat, 1)
		for range n {
			if err := h.executeStep(ctx, i, step, result); err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
			}
		}
	}

	result.Final = eng.Snapshot()
	snaps, err := journal.ListSnapshots(ctx, eng.SessionID(), 0)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	result.Journaled = len(snaps)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) release() {
	for _, s := range h.handles {
		s.Release()
	}
	h.handles = nil
}

// executeStep runs one step and records it. The returned error means the
// step itself was malformed; engine errors are compared with ExpectError.
func (h *Harness) executeStep(ctx context.Context, idx int, step Step, result *Result) error {
	ev := TraceEvent{Step: idx, Op: step.Op}

	switch step.Op {
	case OpEvaluate:
		expr, err := decodeExpr(step.Expr)
		if err != nil {
			return err
		}
		vars, err := decodeVars(step.Vars)
		if err != nil {
			return err
		}
		ev.Input = expr.String()
		got, evalErr := h.engine.Evaluate(ctx, expr, vars)
		if evalErr == nil {
			ev.Output, ev.Kind = got.String(), got.Kind().String()
			if step.Expect != nil {
				want, err := decodeNumber(step.Expect)
				if err != nil {
					return err
				}
				if !ir.EqualNumbers(want, got) {
					result.AddError(fmt.Sprintf("step %d: evaluate %s = %s (%s), expected %s (%s)",
						idx, expr, got, got.Kind(), want, want.Kind()))
				}
			}
		}
		h.checkError(idx, step, evalErr, &ev, result)

	case OpSimplify:
		expr, err := decodeExpr(step.Expr)
		if err != nil {
			return err
		}
		ev.Input = expr.String()
		got, simpErr := h.engine.Simplify(ctx, expr)
		if simpErr == nil {
			ev.Output = got.String()
			if err := h.checkExpr(idx, step, got, result); err != nil {
				return err
			}
		}
		h.checkError(idx, step, simpErr, &ev, result)

	case OpIntern:
		expr, err := decodeExpr(step.Expr)
		if err != nil {
			return err
		}
		ev.Input = expr.String()
		before := h.engine.MemoryStats().Hits
		s, internErr := h.engine.Intern(expr)
		if internErr == nil {
			h.handles = append(h.handles, s)
			ev.Output = s.Expr().String()
			ev.Shared = h.engine.MemoryStats().Hits > before
			if step.Shared != nil && *step.Shared != ev.Shared {
				result.AddError(fmt.Sprintf("step %d: intern %s shared=%t, expected %t",
					idx, expr, ev.Shared, *step.Shared))
			}
			if err := h.checkExpr(idx, step, s.Expr(), result); err != nil {
				return err
			}
		}
		h.checkError(idx, step, internErr, &ev, result)

	case OpAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return err
		}
		h.clock.Advance(d)
		ev.Input = d.String()

	case OpCleanup:
		// Handles interned so far are released first, so their pool
		// entries become collectable.
		h.release()
		cacheRemoved, poolRemoved := h.engine.Cleanup()
		ev.Output = fmt.Sprintf("cache=%d pool=%d", cacheRemoved, poolRemoved)

	case OpClearCache:
		h.engine.ClearCache()

	case OpCheckpoint:
		snap, err := h.engine.Checkpoint(ctx)
		if err != nil {
			return err
		}
		ev.Output = fmt.Sprintf("seq=%d", snap.Seq)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	result.addTrace(ev)
	return nil
}

func (h *Harness) checkExpr(idx int, step Step, got ir.Expression, result *Result) error {
	if step.Expect == nil {
		return nil
	}
	want, err := decodeExpr(step.Expect)
	if err != nil {
		return err
	}
	if !ir.Equal(want, got) {
		result.AddError(fmt.Sprintf("step %d: %s produced %s, expected %s", idx, step.Op, got, want))
	}
	return nil
}

// checkError records err on the event and compares its code with the
// step's ExpectError.
func (h *Harness) checkError(idx int, step Step, err error, ev *TraceEvent, result *Result) {
	code := ""
	if err != nil {
		var ce *engine.ComputeError
		if errors.As(err, &ce) {
			code = string(ce.Code)
		} else {
			code = err.Error()
		}
		ev.Error = code
	}
	if code != step.ExpectError {
		switch {
		case step.ExpectError == "":
			result.AddError(fmt.Sprintf("step %d: %s failed: %v", idx, step.Op, err))
		case code == "":
			result.AddError(fmt.Sprintf("step %d: %s succeeded, expected %s", idx, step.Op, step.ExpectError))
		default:
			result.AddError(fmt.Sprintf("step %d: %s failed with %s, expected %s", idx, step.Op, code, step.ExpectError))
		}
	}
}

package harness

import (
	"github.com/roach88/symcore/internal/engine"
)

// TraceEvent records one executed step. Expressions and numbers are shown
// in their printed form so golden files stay readable.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Shared bool   `json:"shared,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine snapshot taken after the last step.
	Final engine.Snapshot `json:"final"`

	// Journaled is the number of snapshots written by checkpoint steps.
	Journaled int `json:"journaled"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(ev TraceEvent) {
	ev.Seq = int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, ev)
}

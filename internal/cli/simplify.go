package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/symcore/internal/ir"
)

// SimplifyResult is the payload of a successful simplify.
type SimplifyResult struct {
	Input            string          `json:"input"`
	Result           string          `json:"result"`
	Wire             json.RawMessage `json:"wire"`
	Digest           string          `json:"digest"`
	ComplexityBefore int             `json:"complexity_before"`
	ComplexityAfter  int             `json:"complexity_after"`
}

// NewSimplifyCommand creates the simplify command.
func NewSimplifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simplify <expr-json>",
		Short: "Simplify an expression",
		Long: `Rewrite an expression into an equal form that is no more complex.

Identity rules (x + 0, 1 * x, x - x, - - x), constant folding and like-term
collection run to a fixpoint bounded by simplify.max_iterations.

Examples:
  symcore simplify '{"bin":"+","l":"x","r":0}'
  symcore simplify '{"bin":"+","l":{"bin":"*","l":2,"r":"x"},"r":{"bin":"*","l":3,"r":"x"}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(rootOpts, args[0], cmd)
		},
	}
}

func runSimplify(opts *RootOptions, input string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	expr, err := ir.UnmarshalExpression([]byte(input))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, fmt.Sprintf("invalid expression: %v", err), nil)
	}

	eng, err := opts.newEngine(cmd)
	if err != nil {
		return err
	}

	got, err := eng.Simplify(cmd.Context(), expr)
	if err != nil {
		return computeFailure(f, err)
	}

	wire, err := ir.MarshalExpression(got)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode result", err)
	}
	digest, err := ir.ContentDigest(got)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash result", err)
	}
	result := SimplifyResult{
		Input:            expr.String(),
		Result:           got.String(),
		Wire:             wire,
		Digest:           digest,
		ComplexityBefore: ir.Complexity(expr),
		ComplexityAfter:  ir.Complexity(got),
	}
	f.VerboseLog("complexity %d -> %d", result.ComplexityBefore, result.ComplexityAfter)
	return f.Success(result, fmt.Sprintf("%s => %s", result.Input, result.Result))
}

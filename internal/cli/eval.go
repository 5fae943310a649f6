package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Vars []string // name=value, value in the number wire form
}

// EvalResult is the payload of a successful eval.
type EvalResult struct {
	Input  string          `json:"input"`
	Result string          `json:"result"`
	Kind   string          `json:"kind"`
	Wire   json.RawMessage `json:"wire"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expr-json>",
		Short: "Evaluate an expression exactly",
		Long: `Evaluate an expression with exact arithmetic.

Integer and rational results stay exact. Expressions that cannot be
reduced, such as sin(1), are returned in symbolic form.

Exit codes:
  0 - Evaluated
  1 - Computation error (division by zero, undefined variable, ...)
  2 - Command error (malformed input, bad config)

Examples:
  symcore eval '{"bin":"/","l":1,"r":3}'
  symcore eval '{"bin":"*","l":"x","r":"x"}' --var 'x={"rat":"1/2"}'
  symcore eval '{"un":"sqrt","arg":16}' --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "variable binding name=value (repeatable)")

	return cmd
}

func runEval(opts *EvalOptions, input string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	expr, err := ir.UnmarshalExpression([]byte(input))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, fmt.Sprintf("invalid expression: %v", err), nil)
	}
	vars, err := parseVars(opts.Vars)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeParse, err.Error(), nil)
	}

	eng, err := opts.newEngine(cmd)
	if err != nil {
		return err
	}
	f.VerboseLog("session %s", eng.SessionID())

	got, err := eng.Evaluate(cmd.Context(), expr, vars)
	if err != nil {
		return computeFailure(f, err)
	}

	wire, err := ir.MarshalNumber(got)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode result", err)
	}
	result := EvalResult{
		Input:  expr.String(),
		Result: got.String(),
		Kind:   got.Kind().String(),
		Wire:   wire,
	}
	return f.Success(result, fmt.Sprintf("%s = %s (%s)", result.Input, result.Result, result.Kind))
}

// parseVars decodes --var flags. A name may be bound once.
func parseVars(flags []string) (map[string]ir.Number, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	vars := make(map[string]ir.Number, len(flags))
	for _, kv := range flags {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", kv)
		}
		if _, dup := vars[name]; dup {
			return nil, fmt.Errorf("variable %s bound twice", name)
		}
		n, err := ir.UnmarshalNumber([]byte(value))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		vars[name] = n
	}
	return vars, nil
}

// computeFailure reports an engine error. ComputeErrors exit with
// ExitFailure and carry their code; anything else is a command error.
func computeFailure(f *OutputFormatter, err error) error {
	var ce *engine.ComputeError
	if errors.As(err, &ce) {
		details := map[string]string{"code": string(ce.Code)}
		for k, v := range ce.Details {
			details[k] = v
		}
		return f.Fail(ExitFailure, ErrCodeCompute, ce.Error(), details)
	}
	return f.Fail(ExitCommandError, ErrCodeCompute, err.Error(), nil)
}

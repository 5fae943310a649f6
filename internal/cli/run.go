package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/ir"
	"github.com/roach88/symcore/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database   string
	Checkpoint time.Duration
	Retain     time.Duration // prune snapshots older than this; 0 keeps all

	// SessionGenerator overrides the session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionIDGenerator
}

// Request is one line of run input.
type Request struct {
	ID   any                        `json:"id,omitempty"`
	Op   string                     `json:"op"` // "evaluate", "simplify" or "stats"
	Expr json.RawMessage            `json:"expr,omitempty"`
	Vars map[string]json.RawMessage `json:"vars,omitempty"`
}

// Response is one line of run output.
type Response struct {
	ID     any              `json:"id,omitempty"`
	Result string           `json:"result,omitempty"`
	Kind   string           `json:"kind,omitempty"`
	Wire   json.RawMessage  `json:"wire,omitempty"`
	Stats  *engine.Snapshot `json:"stats,omitempty"`
	Error  *CLIError        `json:"error,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve requests from stdin with a long-lived engine",
		Long: `Start one engine and serve newline-delimited JSON requests from stdin,
writing one JSON response per line to stdout.

  {"id":1,"op":"evaluate","expr":{"bin":"/","l":1,"r":3}}
  {"id":2,"op":"simplify","expr":{"bin":"+","l":"x","r":0}}
  {"id":3,"op":"stats"}

The cache and intern pool persist across requests. Expired entries are
swept every memory.cleanup_interval. Statistics snapshots are journaled
to --db every --checkpoint and once more on shutdown; cached values are
never written. With --retain, older snapshots are pruned at startup and
after every checkpoint.

Example:
  symcore run --db ./symcore.db --config symcore.yaml < requests.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite statistics journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().DurationVar(&opts.Checkpoint, "checkpoint", time.Minute, "interval between journaled snapshots")
	cmd.Flags().DurationVar(&opts.Retain, "retain", 0, "prune journaled snapshots older than this (0 keeps all)")

	return cmd
}

func runServe(opts *RunOptions, cmd *cobra.Command) error {
	if opts.Checkpoint <= 0 {
		return NewExitError(ExitCommandError, "--checkpoint must be positive")
	}
	if opts.Retain < 0 {
		return NewExitError(ExitCommandError, "--retain must not be negative")
	}
	logger := opts.logger(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	gen := opts.SessionGenerator
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}
	eng, err := opts.newEngine(cmd, engine.WithRecorder(st), engine.WithSessionGenerator(gen))
	if err != nil {
		return err
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	prune := func() {
		if opts.Retain == 0 {
			return
		}
		removed, err := st.Prune(ctx, time.Now().Add(-opts.Retain))
		if err != nil {
			logger.Error("prune failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Info("journal pruned", "removed", removed)
		}
	}
	prune()

	sweepDone := make(chan error, 1)
	go func() { sweepDone <- eng.Run(ctx) }()

	lines := readLines(ctx, cmd.InOrStdin())
	ticker := time.NewTicker(opts.Checkpoint)
	defer ticker.Stop()

	out := json.NewEncoder(cmd.OutOrStdout())
	logger.Info("serving", "session", eng.SessionID(), "db", opts.Database)

	var readErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			if _, err := eng.Checkpoint(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("checkpoint failed", "error", err)
			}
			prune()
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			if l.err != nil {
				readErr = l.err
				break loop
			}
			if err := out.Encode(serve(ctx, eng, l.text)); err != nil {
				readErr = err
				break loop
			}
		}
	}

	cancel()
	if err := <-sweepDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("sweep loop failed", "error", err)
	}

	// The final snapshot is written even after a signal.
	snap, err := eng.Checkpoint(context.WithoutCancel(parentCtx))
	if err != nil {
		return WrapExitError(ExitFailure, "final checkpoint failed", err)
	}
	logger.Info("engine stopped", "session", snap.SessionID, "seq", snap.Seq)

	if readErr != nil {
		return WrapExitError(ExitCommandError, "failed to read requests", readErr)
	}
	return nil
}

type line struct {
	text []byte
	err  error
}

// readLines streams non-empty input lines until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan line {
	ch := make(chan line)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			text := append([]byte(nil), sc.Bytes()...)
			if len(text) == 0 {
				continue
			}
			select {
			case ch <- line{text: text}:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			select {
			case ch <- line{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return ch
}

// serve handles one request line. Failures are reported in the response.
func serve(ctx context.Context, eng *engine.Engine, data []byte) Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, ErrCodeParse, fmt.Sprintf("invalid request: %v", err))
	}
	resp := Response{ID: req.ID}

	switch req.Op {
	case "evaluate":
		expr, err := ir.UnmarshalExpression(req.Expr)
		if err != nil {
			return errorResponse(req.ID, ErrCodeParse, fmt.Sprintf("invalid expression: %v", err))
		}
		vars := make(map[string]ir.Number, len(req.Vars))
		for name, raw := range req.Vars {
			n, err := ir.UnmarshalNumber(raw)
			if err != nil {
				return errorResponse(req.ID, ErrCodeParse, fmt.Sprintf("invalid value for %s: %v", name, err))
			}
			vars[name] = n
		}
		got, err := eng.Evaluate(ctx, expr, vars)
		if err != nil {
			return computeErrorResponse(req.ID, err)
		}
		resp.Result, resp.Kind = got.String(), got.Kind().String()
		resp.Wire, err = ir.MarshalNumber(got)
		if err != nil {
			return errorResponse(req.ID, ErrCodeCompute, err.Error())
		}

	case "simplify":
		expr, err := ir.UnmarshalExpression(req.Expr)
		if err != nil {
			return errorResponse(req.ID, ErrCodeParse, fmt.Sprintf("invalid expression: %v", err))
		}
		got, err := eng.Simplify(ctx, expr)
		if err != nil {
			return computeErrorResponse(req.ID, err)
		}
		resp.Result = got.String()
		resp.Wire, err = ir.MarshalExpression(got)
		if err != nil {
			return errorResponse(req.ID, ErrCodeCompute, err.Error())
		}

	case "stats":
		snap := eng.Snapshot()
		resp.Stats = &snap

	default:
		return errorResponse(req.ID, ErrCodeParse, fmt.Sprintf("unknown op %q", req.Op))
	}
	return resp
}

func errorResponse(id any, code, message string) Response {
	return Response{ID: id, Error: &CLIError{Code: code, Message: message}}
}

func computeErrorResponse(id any, err error) Response {
	var ce *engine.ComputeError
	if errors.As(err, &ce) {
		return Response{ID: id, Error: &CLIError{Code: string(ce.Code), Message: ce.Message, Details: ce.Details}}
	}
	return errorResponse(id, ErrCodeCompute, err.Error())
}

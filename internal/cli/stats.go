package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/store"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Database string
	Session  string // optional - history of one session
	Limit    int
}

// SessionStats pairs a journaled session with its latest snapshot.
type SessionStats struct {
	Session store.Session    `json:"session"`
	Latest  *engine.Snapshot `json:"latest,omitempty"`
}

// StatsResult is the stats payload. Exactly one field is set: Current
// without --db, Sessions with --db, History with --db and --session.
type StatsResult struct {
	Current  *engine.Snapshot  `json:"current,omitempty"`
	Sessions []SessionStats    `json:"sessions,omitempty"`
	History  []engine.Snapshot `json:"history,omitempty"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache and memory statistics",
		Long: `Show cache and memory statistics.

Without --db, reports the capacities of a fresh engine built from --config.
With --db, reads the statistics journal written by 'symcore run' and lists
every session with its latest snapshot. Add --session to list that
session's snapshots instead.

Examples:
  symcore stats --config symcore.yaml
  symcore stats --db ./symcore.db
  symcore stats --db ./symcore.db --session 0190a5e2-... --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite statistics journal")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show the snapshot history of one session")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "most recent snapshots to show with --session (0 = all)")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if opts.Database == "" {
		if opts.Session != "" {
			return NewExitError(ExitCommandError, "--session requires --db")
		}
		eng, err := opts.newEngine(cmd)
		if err != nil {
			return err
		}
		snap := eng.Snapshot()
		result := StatsResult{Current: &snap}
		if f.Format == "json" {
			return f.Success(result, "")
		}
		writeSnapshot(f.Writer, "", snap)
		return nil
	}

	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.Session != "" {
		return statsHistory(ctx, f, st, opts.Session, opts.Limit)
	}
	return statsSessions(ctx, f, st)
}

func statsSessions(ctx context.Context, f *OutputFormatter, st *store.Store) error {
	sessions, err := st.Sessions(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := StatsResult{Sessions: make([]SessionStats, 0, len(sessions))}
	for _, sess := range sessions {
		entry := SessionStats{Session: sess}
		latest, err := st.LatestSnapshot(ctx, sess.ID)
		switch {
		case err == nil:
			entry.Latest = &latest
		case !errors.Is(err, store.ErrNoSnapshots):
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		result.Sessions = append(result.Sessions, entry)
	}

	if f.Format == "json" {
		return f.Success(result, "")
	}

	w := f.Writer
	if len(result.Sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return nil
	}
	fmt.Fprintf(w, "Journal: %d session(s)\n\n", len(result.Sessions))
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "Session: %s (engine %s, %d snapshot(s))\n",
			s.Session.ID, s.Session.EngineVersion, s.Session.Snapshots)
		if s.Latest != nil {
			writeSnapshot(w, "  ", *s.Latest)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func statsHistory(ctx context.Context, f *OutputFormatter, st *store.Store, session string, limit int) error {
	snaps, err := st.ListSnapshots(ctx, session, limit)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if len(snaps) == 0 {
		return f.Fail(ExitCommandError, ErrCodeStore,
			fmt.Sprintf("session %q: %v", session, store.ErrNoSnapshots), nil)
	}

	if f.Format == "json" {
		return f.Success(StatsResult{History: snaps}, "")
	}
	for _, snap := range snaps {
		fmt.Fprintf(f.Writer, "#%d at %s\n", snap.Seq, snap.TakenAt.Format("2006-01-02 15:04:05"))
		writeSnapshot(f.Writer, "  ", snap)
	}
	return nil
}

func writeSnapshot(w io.Writer, indent string, snap engine.Snapshot) {
	c, u, m := snap.Cache, snap.Usage, snap.Memory
	fmt.Fprintf(w, "%sCache hits:   fast %d/%d (%.1f%%), exact %d/%d (%.1f%%), symbolic %d/%d (%.1f%%)\n", indent,
		c.FastHits, c.FastHits+c.FastMisses, 100*c.FastHitRate(),
		c.ExactHits, c.ExactHits+c.ExactMisses, 100*c.ExactHitRate(),
		c.SymbolicHits, c.SymbolicHits+c.SymbolicMisses, 100*c.SymbolicHitRate())
	fmt.Fprintf(w, "%sCache usage:  fast %d/%d, exact %d/%d, symbolic %d/%d\n", indent,
		u.FastUsage, u.FastCapacity, u.ExactUsage, u.ExactCapacity, u.SymbolicUsage, u.SymbolicCapacity)
	fmt.Fprintf(w, "%sTime saved:   %s\n", indent, c.TimeSaved)
	fmt.Fprintf(w, "%sIntern pool:  %d pooled, %d active, %d hits, %d misses, %d copies\n", indent,
		m.Pooled, m.Active, m.Hits, m.Misses, m.CowTriggers)
}

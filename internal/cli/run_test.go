package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/config"
	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/store"
	"github.com/roach88/symcore/internal/testutil"
)

func serveOptions(db string, every time.Duration) *RunOptions {
	return &RunOptions{
		RootOptions:      &RootOptions{Format: "json"},
		Database:         db,
		Checkpoint:       every,
		SessionGenerator: testutil.NewFixedSessionGenerator("serve-session"),
	}
}

func serveCommand(ctx context.Context, in io.Reader, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	if ctx != nil {
		cmd.SetContext(ctx)
	}
	return cmd
}

func decodeResponses(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	var responses []Response
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var r Response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		responses = append(responses, r)
	}
	return responses
}

func TestServeRequests(t *testing.T) {
	db := filepath.Join(t.TempDir(), "symcore.db")
	input := strings.Join([]string{
		`{"id":1,"op":"evaluate","expr":{"bin":"/","l":1,"r":3}}`,
		`{"id":2,"op":"simplify","expr":{"bin":"+","l":"x","r":0}}`,
		``,
		`{"id":3,"op":"evaluate","expr":{"bin":"/","l":1,"r":0}}`,
		`not json`,
		`{"id":"v","op":"evaluate","expr":"x","vars":{"x":{"rat":"1/2"}}}`,
		`{"op":"bogus"}`,
		`{"id":7,"op":"stats"}`,
	}, "\n")

	out := &bytes.Buffer{}
	err := runServe(serveOptions(db, time.Hour), serveCommand(nil, strings.NewReader(input), out))
	require.NoError(t, err)

	responses := decodeResponses(t, out)
	require.Len(t, responses, 7)

	assert.Equal(t, float64(1), responses[0].ID)
	assert.Equal(t, "1/3", responses[0].Result)
	assert.Equal(t, "rational", responses[0].Kind)
	assert.NotEmpty(t, responses[0].Wire)

	assert.Equal(t, "x", responses[1].Result)
	assert.Empty(t, responses[1].Kind)

	require.NotNil(t, responses[2].Error)
	assert.Equal(t, "DIVISION_BY_ZERO", responses[2].Error.Code)

	require.NotNil(t, responses[3].Error)
	assert.Equal(t, ErrCodeParse, responses[3].Error.Code)
	assert.Nil(t, responses[3].ID)

	assert.Equal(t, "v", responses[4].ID)
	assert.Equal(t, "1/2", responses[4].Result)

	require.NotNil(t, responses[5].Error)
	assert.Contains(t, responses[5].Error.Message, "unknown op")

	require.NotNil(t, responses[6].Stats)
	assert.Equal(t, "serve-session", responses[6].Stats.SessionID)
	assert.Equal(t, uint64(1), responses[6].Stats.Cache.SymbolicMisses)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	latest, err := st.LatestSnapshot(context.Background(), "serve-session")
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.Seq, "stats request took seq 1, shutdown checkpoint seq 2")
}

func TestServePeriodicCheckpoints(t *testing.T) {
	db := filepath.Join(t.TempDir(), "symcore.db")
	pr, pw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- runServe(serveOptions(db, 5*time.Millisecond), serveCommand(nil, pr, io.Discard))
	}()

	_, err := pw.Write([]byte(`{"op":"evaluate","expr":{"bin":"+","l":1,"r":1}}` + "\n"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, pw.Close())
	require.NoError(t, <-done)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	snaps, err := st.ListSnapshots(context.Background(), "serve-session", 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(snaps), 2)
}

func TestServeStopsOnCancel(t *testing.T) {
	db := filepath.Join(t.TempDir(), "symcore.db")
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServe(serveOptions(db, time.Hour), serveCommand(ctx, pr, io.Discard))
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	_, err = st.LatestSnapshot(context.Background(), "serve-session")
	assert.NoError(t, err, "the shutdown checkpoint is written after cancellation")
}

func TestServeFlagErrors(t *testing.T) {
	_, _, err := execute(t, "", "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)

	db := filepath.Join(t.TempDir(), "x.db")
	_, _, err = execute(t, "", "run", "--db", db, "--checkpoint", "0s")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "", "run", "--db", db, "--retain", "-1h")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServeRetainPrunesOldSessions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "symcore.db")

	st, err := store.Open(db)
	require.NoError(t, err)
	old, err := engine.New(config.Default(),
		engine.WithSessionID("old-session"),
		engine.WithClock(testutil.NewManualClock(testutil.Epoch)),
		engine.WithRecorder(st))
	require.NoError(t, err)
	_, err = old.Checkpoint(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	opts := serveOptions(db, time.Hour)
	opts.Retain = 24 * time.Hour
	require.NoError(t, runServe(opts, serveCommand(nil, strings.NewReader(""), io.Discard)))

	st, err = store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	sessions, err := st.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "serve-session", sessions[0].ID)
}

package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/etrace/internal/reasoner"
	"github.com/roach88/etrace/internal/store"
)

func TestStream_DrainsQueue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chain.yaml", chainScenario)
	dbPath := filepath.Join(dir, "journal.db")

	opts := &StreamOptions{
		RootOptions:      &RootOptions{Format: "json"},
		SessionGenerator: reasoner.NewFixedGenerator("stream-1"),
	}
	out, _, err := execute(newStreamCommand(opts), "--db", dbPath, path)
	require.NoError(t, err)

	resp := decodeResponse[StreamSummary](t, []byte(out))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, StreamSummary{
		Scenario:    "chain",
		SessionID:   "stream-1",
		Events:      3,
		Cycles:      1,
		Now:         21,
		TraceLength: 2,
		Concepts:    resp.Data.Concepts,
		Admissions:  6,
	}, resp.Data)
	assert.GreaterOrEqual(t, resp.Data.Concepts, 4)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	admissions, err := st.ReadAdmissions(context.Background(), "stream-1")
	require.NoError(t, err)
	require.Len(t, admissions, 6, "the final flush journals everything")
	assert.Equal(t, "a", admissions[0].Term)
}

func TestStream_MatchesRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chain.yaml", chainScenario)

	streamDB := filepath.Join(dir, "stream.db")
	_, _, err := execute(newStreamCommand(&StreamOptions{
		RootOptions:      &RootOptions{Format: "json"},
		SessionGenerator: reasoner.NewFixedGenerator("s"),
	}), "--db", streamDB, path)
	require.NoError(t, err)

	runDB := filepath.Join(dir, "run.db")
	_, _, err = execute(newRunCommand(&RunOptions{
		RootOptions:      &RootOptions{Format: "json"},
		SessionGenerator: reasoner.NewFixedGenerator("s"),
	}), "--db", runDB, path)
	require.NoError(t, err)

	read := func(dbPath string) []string {
		st, err := store.Open(dbPath)
		require.NoError(t, err)
		defer st.Close()
		admissions, err := st.ReadAdmissions(context.Background(), "s")
		require.NoError(t, err)
		var fps []string
		for _, a := range admissions {
			fps = append(fps, a.Fingerprint)
		}
		return fps
	}
	assert.Equal(t, read(runDB), read(streamDB))
}

func TestStream_TickerStopsAfterDuration(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chain.yaml", chainScenario)

	out, _, err := execute(NewStreamCommand(&RootOptions{Format: "json"}),
		"--interval", "1ms", "--duration", "50ms", path)
	require.NoError(t, err)

	resp := decodeResponse[StreamSummary](t, []byte(out))
	assert.Equal(t, 3, resp.Data.Events)
	assert.GreaterOrEqual(t, resp.Data.Cycles, int64(1))
	assert.NotEmpty(t, resp.Data.SessionID)
}

func TestStream_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fixed.yaml", "session_id: text-1\n"+chainScenario)

	out, _, err := execute(NewStreamCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Session:    text-1")
	assert.Contains(t, out, "Cycles:     1 (now 21)")
	assert.Contains(t, out, "Admissions: 6")
}

func TestStream_MissingScenario(t *testing.T) {
	_, _, err := execute(NewStreamCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

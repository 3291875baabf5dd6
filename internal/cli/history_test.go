package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfrayan/goGreen/internal/store"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "run-a", StartedAt: base, Year: 2025, Mode: `pattern("HI")`, Text: "HI", Planned: 2}))
	require.NoError(t, st.RecordEvent(ctx, store.Event{RunID: "run-a", Seq: 1, Day: "2025-01-01", Timestamp: "2025-01-01T00:01:02Z", Message: "Contribution - 2025-01-01T00:01:02Z", Committed: true}))
	require.NoError(t, st.RecordEvent(ctx, store.Event{RunID: "run-a", Seq: 2, Day: "2025-01-02", Timestamp: "2025-01-02T00:03:04Z", Message: "Contribution - 2025-01-02T00:03:04Z"}))
	require.NoError(t, st.FinishRun(ctx, "run-a", store.Outcome{FinishedAt: base.Add(time.Second), Committed: 1, Status: store.StatusFailed, Error: "commit: exit status 1"}))

	require.NoError(t, st.BeginRun(ctx, store.Run{ID: "run-b", StartedAt: base.Add(time.Hour), Year: 2024, Mode: "random(max=3)", DryRun: true, Planned: 500}))
	require.NoError(t, st.FinishRun(ctx, "run-b", store.Outcome{FinishedAt: base.Add(time.Hour), Status: store.StatusSucceeded}))
	return path
}

func executeHistory(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	return executeHistoryWith(t, &RootOptions{Format: format, Logger: discardLogger()}, args...)
}

func executeHistoryWith(t *testing.T, rootOpts *RootOptions, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestHistory_ListJSON(t *testing.T) {
	db := seedHistory(t)

	buf, err := executeHistory(t, "json", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Data RunList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, "run-b", resp.Data.Runs[0].ID)
	assert.True(t, resp.Data.Runs[0].DryRun)
	assert.Equal(t, "run-a", resp.Data.Runs[1].ID)
	assert.Equal(t, store.StatusFailed, resp.Data.Runs[1].Status)
}

func TestHistory_ListText(t *testing.T) {
	db := seedHistory(t)

	buf, err := executeHistory(t, "text", "--db", db, "--limit", "1")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "run-b")
	assert.Contains(t, out, "succeeded (dry-run)")
	assert.NotContains(t, out, "run-a")
}

func TestHistory_ShowRun(t *testing.T) {
	db := seedHistory(t)

	buf, err := executeHistory(t, "text", "--db", db, "run-a")
	require.NoError(t, err)

	want := "run run-a  2025  pattern(\"HI\")  failed\n" +
		"error: commit: exit status 1\n" +
		"✓    1  2025-01-01T00:01:02Z  Contribution - 2025-01-01T00:01:02Z\n" +
		"     2  2025-01-02T00:03:04Z  Contribution - 2025-01-02T00:03:04Z\n"
	assert.Equal(t, want, buf.String())
}

func TestHistory_UnknownRun(t *testing.T) {
	db := seedHistory(t)

	_, err := executeHistory(t, "text", "--db", db, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHistory_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.db")

	_, err := executeHistory(t, "text", "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NoFileExists(t, path)
}

func TestRunList_Empty(t *testing.T) {
	assert.Equal(t, "no runs recorded", RunList{}.String())
}

func TestHistory_DatabaseFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	cfgPath := filepath.Join(dir, "gogreen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("year: 2025\ntext: HI\ndry_run: true\nhistory_db: "+dbPath+"\n"), 0644))

	genOpts, genBuf := newTestGenerate(t, "text", nil)
	genOpts.ConfigFile = cfgPath
	require.NoError(t, executeGenerate(genOpts, genBuf))
	require.FileExists(t, dbPath)

	buf, err := executeHistoryWith(t, &RootOptions{Format: "json", ConfigFile: cfgPath, Logger: discardLogger()})
	require.NoError(t, err)

	var resp struct {
		Data RunList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, "gen-1", resp.Data.Runs[0].ID)
	assert.Equal(t, "HI", resp.Data.Runs[0].Text)
}

func TestHistory_DatabaseFromEnv(t *testing.T) {
	db := seedHistory(t)
	t.Setenv("GOGREEN_HISTORY_DB", db)

	buf, err := executeHistory(t, "text", "run-a")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run run-a  2025")
}

func TestHistory_DatabaseFromDotEnv(t *testing.T) {
	db := seedHistory(t)
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GOGREEN_HISTORY_DB="+db+"\n"), 0644))
	// Load skips variables that are already set; Setenv restores the
	// original state after the test.
	t.Setenv("GOGREEN_HISTORY_DB", "")
	os.Unsetenv("GOGREEN_HISTORY_DB")

	buf, err := executeHistoryWith(t, &RootOptions{Format: "text", EnvFile: envPath, Logger: discardLogger()})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run-b")
}

func TestHistory_DBFlagWinsOverConfig(t *testing.T) {
	db := seedHistory(t)
	cfgPath := filepath.Join(t.TempDir(), "gogreen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history_db: "+filepath.Join(t.TempDir(), "other.db")+"\n"), 0644))

	buf, err := executeHistoryWith(t, &RootOptions{Format: "text", ConfigFile: cfgPath, Logger: discardLogger()}, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "run-a")
}

func TestHistory_BadConfigFile(t *testing.T) {
	_, err := executeHistoryWith(t, &RootOptions{Format: "text", ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), Logger: discardLogger()})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

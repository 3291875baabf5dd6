package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfrayan/goGreen/internal/runner"
	"github.com/sfrayan/goGreen/internal/store"
	"github.com/sfrayan/goGreen/internal/testutil"
)

func newTestGenerate(t *testing.T, format string, repo *testutil.RecordingRepository) (*GenerateOptions, *bytes.Buffer) {
	t.Helper()
	opts := &GenerateOptions{
		RootOptions: &RootOptions{Format: format, Logger: discardLogger()},
		RunnerOptions: []runner.Option{
			runner.WithIDGenerator(testutil.NewSequenceIDGenerator("gen")),
		},
	}
	if repo != nil {
		opts.Repository = repo
	}
	return opts, &bytes.Buffer{}
}

func executeGenerate(opts *GenerateOptions, buf *bytes.Buffer, args ...string) error {
	cmd := newGenerateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestGenerate_DryRunText(t *testing.T) {
	repo := testutil.NewRecordingRepository()
	opts, buf := newTestGenerate(t, "text", repo)

	err := executeGenerate(opts, buf, "2025", "--text", "RAYAN", "--dry-run", "--no-history", "--timezone", "UTC")
	require.NoError(t, err)

	assert.Equal(t, "[dry-run] 394 commits planned for 2025 (pattern(\"RAYAN\")), nothing written\n", buf.String())
	assert.Empty(t, repo.Calls())
}

func TestGenerate_JSONResult(t *testing.T) {
	repo := testutil.NewRecordingRepository()
	opts, buf := newTestGenerate(t, "json", repo)
	dir := t.TempDir()

	err := executeGenerate(opts, buf,
		"2025", "--text", "-", "--intensities", "1,1,1", "--no-history",
		"--repo", dir, "--timezone", "UTC", "--seed", "9",
	)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   runner.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "gen-1", resp.Data.RunID)
	assert.Equal(t, 5, resp.Data.Planned)
	assert.Equal(t, 5, resp.Data.Committed)
	assert.False(t, resp.Data.Pushed)

	stages := 0
	for _, c := range repo.Calls() {
		if c.Op == "stage" {
			stages++
			assert.Equal(t, []string{filepath.Join(dir, "data.json")}, c.Args)
		}
	}
	assert.Equal(t, 5, stages)
	assert.FileExists(t, filepath.Join(dir, "data.json"))
}

func TestGenerate_RandomModePositionalArgs(t *testing.T) {
	opts, buf := newTestGenerate(t, "json", nil)

	err := executeGenerate(opts, buf, "2024", "0", "--dry-run", "--no-history")
	require.NoError(t, err)

	var resp struct {
		Data runner.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2024, resp.Data.Year)
	assert.Equal(t, "random(max=0)", resp.Data.Mode)
	assert.Zero(t, resp.Data.Planned)
}

func TestGenerate_FlagsOverridePositional(t *testing.T) {
	opts, buf := newTestGenerate(t, "json", nil)

	err := executeGenerate(opts, buf, "2024", "--year", "2023", "--text", "I", "--dry-run", "--no-history")
	require.NoError(t, err)

	var resp struct {
		Data runner.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2023, resp.Data.Year)
}

func TestGenerate_InvalidYearFallsBack(t *testing.T) {
	opts, buf := newTestGenerate(t, "json", nil)

	err := executeGenerate(opts, buf, "twenty", "--text", "I", "--dry-run", "--no-history")
	require.NoError(t, err)

	var resp struct {
		Data runner.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.NotZero(t, resp.Data.Year)
}

func TestGenerate_EnvAndConfigFileLayering(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "gogreen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("year: 2022\ntext: HI\ndry_run: true\nno_history: true\n"), 0644))
	t.Setenv("GOGREEN_YEAR", "2021")
	t.Setenv("GOGREEN_MESSAGE", "from env")

	opts, buf := newTestGenerate(t, "json", nil)
	opts.ConfigFile = cfgPath

	err := executeGenerate(opts, buf, "--text", "OK")
	require.NoError(t, err)

	var resp struct {
		Data runner.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 2022, resp.Data.Year)
	assert.Equal(t, `pattern("OK")`, resp.Data.Mode)
	assert.True(t, resp.Data.DryRun)
}

func TestGenerate_MissingConfigFile(t *testing.T) {
	opts, buf := newTestGenerate(t, "text", nil)
	opts.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml")

	err := executeGenerate(opts, buf, "--dry-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestGenerate_RunFailureExitCode(t *testing.T) {
	repo := testutil.NewRecordingRepository()
	repo.Fail("commit", errors.New("nothing to commit"))
	opts, buf := newTestGenerate(t, "json", repo)

	err := executeGenerate(opts, buf, "2025", "--text", "-", "--no-history", "--repo", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "generate stopped after 0 of")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeRun, resp.Error.Code)
}

func TestGenerate_RecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	opts, buf := newTestGenerate(t, "text", nil)

	err := executeGenerate(opts, buf, "2025", "--text", "RAYAN", "--dry-run", "--history-db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.GetRun(context.Background(), "gen-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusSucceeded, run.Status)
	assert.Equal(t, 394, run.Planned)
	assert.True(t, run.DryRun)

	events, err := st.Events(context.Background(), "gen-1")
	require.NoError(t, err)
	assert.Len(t, events, 394)
}

func TestGenerate_RealGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gitCmd := func(args ...string) string {
		t.Helper()
		c := exec.Command("git", args...)
		c.Dir = dir
		out, err := c.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return string(out)
	}
	gitCmd("init", "--quiet")
	gitCmd("config", "user.name", "Test User")
	gitCmd("config", "user.email", "test@example.com")
	gitCmd("config", "commit.gpgsign", "false")

	opts, buf := newTestGenerate(t, "text", nil)
	err := executeGenerate(opts, buf,
		"2025", "--text", "-", "--intensities", "1,1,1",
		"--repo", dir, "--no-history", "--timezone", "UTC", "--seed", "3",
	)
	require.NoError(t, err)
	assert.Equal(t, "5 commits created for 2025 (pattern(\"-\"))\n", buf.String())

	log := strings.Fields(gitCmd("log", "--format=%ad", "--date=format:%Y-%m-%d"))
	assert.Equal(t, []string{"2025-01-29", "2025-01-22", "2025-01-15", "2025-01-08", "2025-01-01"}, log)
}

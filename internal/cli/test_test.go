package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

func executeTest(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format, Logger: discardLogger()})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTestCommand_HarnessScenariosPass(t *testing.T) {
	buf, err := executeTest(t, "json", harnessScenarios)
	require.NoError(t, err, buf.String())

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Data.Total)
	assert.Equal(t, 5, resp.Data.Passed)
	assert.Zero(t, resp.Data.Failed)
}

func TestTestCommand_FilterText(t *testing.T) {
	buf, err := executeTest(t, "text", harnessScenarios, "--filter", "dash_*")
	require.NoError(t, err)

	assert.Equal(t, "✓ dash_push\n\nTest Summary: 1 passed, 0 failed, 1 total\n✓ All scenarios passed\n", buf.String())
}

func TestTestCommand_UpdateWritesGoldens(t *testing.T) {
	goldenDir := filepath.Join(t.TempDir(), "golden")

	_, err := executeTest(t, "text", harnessScenarios, "--filter", "dry_run", "--golden-dir", goldenDir, "--update")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(goldenDir, "dry_run.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile("../harness/testdata/golden/dry_run.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestTestCommand_GoldenMismatchFails(t *testing.T) {
	goldenDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "dash_push.golden"), []byte("{}"), 0644))

	buf, err := executeTest(t, "text", harnessScenarios, "--filter", "dash_push", "--golden-dir", goldenDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ dash_push")
	assert.Contains(t, buf.String(), "trace does not match golden file")
}

func TestTestCommand_FailingAssertionJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.Mkdir(dir, 0755))
	scenario := `name: wrong_count
description: "Expects more commits than a dash makes"
config:
  year: 2025
  text: "-"
  intensities: "1,1,1"
  seed: 1
assertions:
  - type: call_count
    op: commit
    count: 6
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_count.yaml"), []byte(scenario), 0644))

	buf, err := executeTest(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeTest, resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.False(t, resp.Data.Scenarios[0].Pass)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "call_count")
}

func TestTestCommand_InvalidScenarioFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: broken\n"), 0644))

	buf, err := executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ broken.yml")
	assert.Contains(t, buf.String(), "failed to load scenario")
}

func TestTestCommand_MissingDirectory(t *testing.T) {
	_, err := executeTest(t, "text", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_NoScenarios(t *testing.T) {
	buf, err := executeTest(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", buf.String())
}

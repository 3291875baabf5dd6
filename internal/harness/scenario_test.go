package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/dash_push.yaml")
	require.NoError(t, err)

	assert.Equal(t, "dash_push", s.Name)
	assert.Equal(t, 2026, s.Now.Year())
	assert.Len(t, s.Assertions, 6)
	assert.Equal(t, AssertCommitsOn, s.Assertions[3].Type)
	assert.Equal(t, "2025-01-01", s.Assertions[3].Day)
}

func TestLoadScenario_DefaultNow(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/commit_failure.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultNow, s.Now)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, 3, s.Failures[0].At)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: typo
description: "misspelled key"
config: {year: 2025}
assertion:
  - type: call_count
    op: commit
`), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nconfig: {}\nassertions: [{type: call_count, op: push}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nconfig: {}\nassertions: [{type: call_count, op: push}]",
			wantErr: "description is required",
		},
		{
			name:    "config not a mapping",
			yaml:    "name: n\ndescription: d\nconfig: [1]\nassertions: [{type: call_count, op: push}]",
			wantErr: "config must be a mapping",
		},
		{
			name:    "no assertions",
			yaml:    "name: n\ndescription: d\nconfig: {}",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown failure op",
			yaml:    "name: n\ndescription: d\nconfig: {}\nfailures: [{op: fetch, message: x}]\nassertions: [{type: call_count, op: push}]",
			wantErr: `unknown op "fetch"`,
		},
		{
			name:    "remote without url",
			yaml:    "name: n\ndescription: d\nconfig: {}\nremotes: [{name: origin}]\nassertions: [{type: call_count, op: push}]",
			wantErr: "remotes[0]: name and url are required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nconfig: {}\nassertions: [{type: trace_contains}]",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "empty call_order",
			yaml:    "name: n\ndescription: d\nconfig: {}\nassertions: [{type: call_order}]",
			wantErr: "ops list is required",
		},
		{
			name:    "bad day",
			yaml:    "name: n\ndescription: d\nconfig: {}\nassertions: [{type: commits_on, day: Jan 1, count: 1}]",
			wantErr: "day must be YYYY-MM-DD",
		},
		{
			name:    "ledger without expect",
			yaml:    "name: n\ndescription: d\nconfig: {}\nassertions: [{type: ledger}]",
			wantErr: "expect is required for ledger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Planned      int          `json:"planned"`
	Committed    int          `json:"committed"`
	Pushed       bool         `json:"pushed"`
	Trace        []TraceEvent `json:"trace"`
}

// NewSnapshot builds the golden form of a scenario result.
func NewSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
	}
	if result.Run != nil {
		snapshot.Planned = result.Run.Planned
		snapshot.Committed = result.Run.Committed
		snapshot.Pushed = result.Run.Pushed
	}
	return snapshot
}

// Bytes encodes the snapshot exactly as golden files store it.
func (s TraceSnapshot) Bytes() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.AssertJson(t, scenario.Name, NewSnapshot(scenario, result))

	return result, nil
}

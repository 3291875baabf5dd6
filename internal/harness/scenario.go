package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is one end-to-end generate run with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the wall time the run starts at. Defaults to DefaultNow.
	Now time.Time `yaml:"now,omitempty"`

	// Config overlays the built-in defaults, using config file keys.
	Config yaml.Node `yaml:"config"`

	// Remotes preconfigure the recording repository.
	Remotes []RemoteStep `yaml:"remotes,omitempty"`

	// Failures inject repository errors.
	Failures []Failure `yaml:"failures,omitempty"`

	// ExpectError, when set, must be a substring of the run error.
	// When empty the run must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// RemoteStep is a remote that exists before the run.
type RemoteStep struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Failure makes a repository operation fail. With At > 0 only the At-th
// call fails.
type Failure struct {
	Op      string `yaml:"op"`
	At      int    `yaml:"at,omitempty"`
	Message string `yaml:"message"`
}

// Assertion validates the trace or the ledger.
type Assertion struct {
	// Type specifies the assertion type:
	// - "call_count": Op was called exactly Count times
	// - "call_order": Ops appear in this relative order
	// - "commits_on": Count commits are dated on Day
	// - "ledger": the run row has the Expect field values
	Type string `yaml:"type"`

	Op    string   `yaml:"op,omitempty"`
	Ops   []string `yaml:"ops,omitempty"`
	Day   string   `yaml:"day,omitempty"`
	Count int      `yaml:"count,omitempty"`

	// Expect is a subset match against the run's JSON fields.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertCallCount = "call_count"
	AssertCallOrder = "call_order"
	AssertCommitsOn = "commits_on"
	AssertLedger    = "ledger"
)

// Repository operations a scenario can reference.
var knownOps = map[string]bool{
	"stage":        true,
	"commit":       true,
	"push":         true,
	"list-remotes": true,
	"add-remote":   true,
	"set-url":      true,
}

// DefaultNow is the run start time of scenarios that do not set one.
var DefaultNow = time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.Now.IsZero() {
		scenario.Now = DefaultNow
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config.Kind != yaml.MappingNode {
		return fmt.Errorf("config must be a mapping")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, r := range s.Remotes {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("remotes[%d]: name and url are required", i)
		}
	}
	for i, f := range s.Failures {
		if !knownOps[f.Op] {
			return fmt.Errorf("failures[%d]: unknown op %q", i, f.Op)
		}
		if f.At < 0 {
			return fmt.Errorf("failures[%d]: at must be non-negative", i)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCallCount:
		if !knownOps[a.Op] {
			return fmt.Errorf("assertions[%d]: unknown op %q for call_count", index, a.Op)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
	case AssertCallOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for call_order", index)
		}
		for _, op := range a.Ops {
			if !knownOps[op] {
				return fmt.Errorf("assertions[%d]: unknown op %q for call_order", index, op)
			}
		}
	case AssertCommitsOn:
		if _, err := time.Parse(time.DateOnly, a.Day); err != nil {
			return fmt.Errorf("assertions[%d]: day must be YYYY-MM-DD for commits_on", index)
		}
	case AssertLedger:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for ledger", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

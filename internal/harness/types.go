package harness

import (
	"fmt"

	"github.com/sfrayan/goGreen/internal/runner"
)

// TraceEvent is one repository call. Commits carry their day instead of
// their message and time.
type TraceEvent struct {
	Seq  int      `json:"seq"`
	Op   string   `json:"op"`
	Args []string `json:"args,omitempty"`
	Day  string   `json:"day,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the run error matched and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every repository call in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Run is the runner's summary.
	Run *runner.Result `json:"run,omitempty"`

	// Ledger is the recorded run row as JSON fields.
	Ledger map[string]any `json:"ledger,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

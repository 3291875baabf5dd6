package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sfrayan/goGreen/internal/config"
	"github.com/sfrayan/goGreen/internal/runner"
	"github.com/sfrayan/goGreen/internal/store"
	"github.com/sfrayan/goGreen/internal/testutil"
	"github.com/sfrayan/goGreen/internal/vcs"
)

// RunID is the ID every scenario run is recorded under.
const RunID = "scenario-1"

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// step clock and sequential run IDs so results are reproducible. The
// scenario config must set a seed for timestamps to be reproducible too;
// the trace itself never depends on it.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	cfg := config.Default(scenario.Now)
	if err := scenario.Config.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Normalize(logger, scenario.Now)

	repo := testutil.NewRecordingRepository(remotes(scenario.Remotes)...)
	for _, f := range scenario.Failures {
		if f.At > 0 {
			repo.FailAt(f.Op, f.At, errors.New(f.Message))
		} else {
			repo.Fail(f.Op, errors.New(f.Message))
		}
	}

	r := runner.New(cfg, repo, testutil.NewMemoryMarker(cfg.MarkerPath),
		runner.WithLogger(logger),
		runner.WithLedger(st),
		runner.WithClock(testutil.NewStepClock(scenario.Now, time.Second)),
		runner.WithIDGenerator(fixedID(RunID)),
	)

	ctx := context.Background()
	result := NewResult()
	res, runErr := r.Run(ctx)
	result.Run = res
	result.Trace = trace(repo.Calls())

	switch {
	case scenario.ExpectError == "" && runErr != nil:
		result.AddError("unexpected run error: %v", runErr)
	case scenario.ExpectError != "" && runErr == nil:
		result.AddError("expected run error containing %q, run succeeded", scenario.ExpectError)
	case scenario.ExpectError != "" && !strings.Contains(runErr.Error(), scenario.ExpectError):
		result.AddError("run error %q does not contain %q", runErr, scenario.ExpectError)
	}

	ledger, err := ledgerFields(ctx, st)
	if err != nil {
		return nil, err
	}
	result.Ledger = ledger

	for i, a := range scenario.Assertions {
		if err := evaluate(a, result); err != nil {
			result.AddError("assertions[%d] (%s): %v", i, a.Type, err)
		}
	}

	return result, nil
}

type fixedID string

func (id fixedID) Generate() string { return string(id) }

func remotes(steps []RemoteStep) []vcs.Remote {
	out := make([]vcs.Remote, 0, len(steps))
	for _, s := range steps {
		out = append(out, vcs.Remote{Name: s.Name, FetchURL: s.URL, PushURL: s.URL})
	}
	return out
}

func trace(calls []testutil.Call) []TraceEvent {
	events := make([]TraceEvent, 0, len(calls))
	for i, c := range calls {
		ev := TraceEvent{Seq: i + 1, Op: c.Op}
		if c.Op == "commit" {
			ev.Day = c.Opts.Date.Format(time.DateOnly)
		} else {
			ev.Args = c.Args
		}
		events = append(events, ev)
	}
	return events
}

// ledgerFields returns the recorded run as its JSON fields.
func ledgerFields(ctx context.Context, st *store.Store) (map[string]any, error) {
	run, err := st.GetRun(ctx, RunID)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	data, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger run: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal ledger run: %w", err)
	}
	return fields, nil
}

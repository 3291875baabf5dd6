package harness

import (
	"fmt"
	"slices"
)

func evaluate(a Assertion, r *Result) error {
	switch a.Type {
	case AssertCallCount:
		return assertCallCount(r.Trace, a.Op, a.Count)
	case AssertCallOrder:
		return assertCallOrder(r.Trace, a.Ops)
	case AssertCommitsOn:
		return assertCommitsOn(r.Trace, a.Day, a.Count)
	case AssertLedger:
		return assertLedger(r.Ledger, a.Expect)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertCallCount(trace []TraceEvent, op string, want int) error {
	got := 0
	for _, ev := range trace {
		if ev.Op == op {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("%s called %d times, want %d", op, got, want)
	}
	return nil
}

// assertCallOrder checks that ops occur in the trace in this order, not
// necessarily adjacent.
func assertCallOrder(trace []TraceEvent, ops []string) error {
	next := 0
	for _, ev := range trace {
		if next < len(ops) && ev.Op == ops[next] {
			next++
		}
	}
	if next < len(ops) {
		return fmt.Errorf("%s not found after %v", ops[next], ops[:next])
	}
	return nil
}

func assertCommitsOn(trace []TraceEvent, day string, want int) error {
	got := 0
	for _, ev := range trace {
		if ev.Op == "commit" && ev.Day == day {
			got++
		}
	}
	if got != want {
		return fmt.Errorf("%d commits on %s, want %d", got, day, want)
	}
	return nil
}

// assertLedger is a subset match. Values compare by their printed form so
// YAML integers match JSON numbers.
func assertLedger(ledger map[string]any, expect map[string]any) error {
	var mismatched []string
	for key, want := range expect {
		got, ok := ledger[key]
		if !ok {
			mismatched = append(mismatched, fmt.Sprintf("%s: missing", key))
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			mismatched = append(mismatched, fmt.Sprintf("%s: got %v, want %v", key, got, want))
		}
	}
	if len(mismatched) > 0 {
		slices.Sort(mismatched)
		return fmt.Errorf("ledger mismatch: %v", mismatched)
	}
	return nil
}

package schedule

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sfrayan/goGreen/internal/calendar"
)

// Rand is the randomness Generate needs. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a PCG-backed generator. Equal seeds give equal schedules.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Policy decides where in a day the events of that day fall.
type Policy int

const (
	// Spread places event i of n at hour floor(i*24/n) with random minute
	// and second, so hours never decrease within a day.
	Spread Policy = iota

	// Uniform draws hour, minute and second independently per event.
	Uniform
)

func (p Policy) String() string {
	switch p {
	case Spread:
		return "spread"
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// TimestampLayout is the ISO-8601 form used in messages and markers.
const TimestampLayout = time.RFC3339

// CommitEvent is one scheduled synthetic commit.
type CommitEvent struct {
	// Seq is the 1-based position of the event in the run.
	Seq     int
	Date    calendar.Date
	Time    time.Time
	Message string
}

// Timestamp returns the ISO-8601 form of the event time.
func (e CommitEvent) Timestamp() string {
	return e.Time.Format(TimestampLayout)
}

// Generate returns n timestamps on date in loc following policy.
func Generate(date calendar.Date, n int, policy Policy, rng Rand, loc *time.Location) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		var hour int
		switch policy {
		case Spread:
			hour = i * 24 / max(1, n)
		default:
			hour = rng.IntN(24)
		}
		out[i] = date.At(hour, rng.IntN(60), rng.IntN(60), loc)
	}
	return out
}

// Message appends the event timestamp to template.
func Message(template string, ts time.Time) string {
	return template + " - " + ts.Format(TimestampLayout)
}

// Events expands counts into commit events, one date group at a time in
// ascending date order. Order within a group follows policy.
func Events(counts calendar.DateCommitMap, policy Policy, template string, rng Rand, loc *time.Location) []CommitEvent {
	events := make([]CommitEvent, 0, counts.Total())
	for _, day := range counts.Dates() {
		for _, ts := range Generate(day, counts.Get(day), policy, rng, loc) {
			events = append(events, CommitEvent{
				Seq:     len(events) + 1,
				Date:    day,
				Time:    ts,
				Message: Message(template, ts),
			})
		}
	}
	return events
}

// Events expands the plan into commit events.
func (p Plan) Events(template string, rng Rand, loc *time.Location) []CommitEvent {
	return Events(p.Counts, p.Policy, template, rng, loc)
}

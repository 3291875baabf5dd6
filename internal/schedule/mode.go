package schedule

import (
	"fmt"
	"time"

	"github.com/sfrayan/goGreen/internal/calendar"
	"github.com/sfrayan/goGreen/internal/intensity"
	"github.com/sfrayan/goGreen/internal/pattern"
)

// Mode selects how per-day counts are produced. It is either a PatternMode
// or a RandomMode and is resolved once per run.
type Mode interface {
	// Policy is the timestamp spacing used for events of this mode.
	Policy() Policy
	String() string

	mode()
}

// PatternMode draws Text onto the contribution grid.
type PatternMode struct {
	Text string
}

// RandomMode gives every day of the year a uniform count in [0, Max].
type RandomMode struct {
	Max int
}

func (PatternMode) mode() {}
func (RandomMode) mode()  {}

// Policy implements Mode.
func (PatternMode) Policy() Policy { return Spread }

// Policy implements Mode.
func (RandomMode) Policy() Policy { return Uniform }

func (m PatternMode) String() string { return fmt.Sprintf("pattern(%q)", m.Text) }
func (m RandomMode) String() string  { return fmt.Sprintf("random(max=%d)", m.Max) }

// ResolveMode picks PatternMode when text was supplied and RandomMode
// otherwise.
func ResolveMode(text string, maxPerDay int) Mode {
	if text != "" {
		return PatternMode{Text: text}
	}
	return RandomMode{Max: max(0, maxPerDay)}
}

// Options parameterize NewPlan.
type Options struct {
	Year      int
	Tiers     intensity.Tiers
	WeekStart time.Weekday
	Offset    int
	Rand      Rand
}

// Plan is the per-day commit schedule of a run, before timestamps are drawn.
type Plan struct {
	Mode   Mode
	Year   int
	Policy Policy
	Counts calendar.DateCommitMap

	// Pattern and Clipped are only set in pattern mode.
	Pattern pattern.Pattern
	Clipped int
}

// NewPlan builds the per-day counts for mode.
func NewPlan(mode Mode, opts Options) Plan {
	plan := Plan{Mode: mode, Year: opts.Year, Policy: mode.Policy()}
	if opts.Rand == nil {
		opts.Rand = NewRand(uint64(time.Now().UnixNano()))
	}

	switch m := mode.(type) {
	case PatternMode:
		plan.Pattern = pattern.Build(m.Text)
		plan.Counts = calendar.DateCommitMap{}
		mapper := calendar.Mapper{
			Year:      opts.Year,
			Tiers:     opts.Tiers,
			WeekStart: opts.WeekStart,
			Offset:    opts.Offset,
		}
		plan.Clipped = mapper.Into(plan.Counts, plan.Pattern)
	case RandomMode:
		plan.Counts = RandomPlan(opts.Year, m.Max, opts.Rand)
	default:
		panic(fmt.Sprintf("schedule: unknown mode %T", mode))
	}
	return plan
}

// Total returns the number of events the plan will produce.
func (p Plan) Total() int { return p.Counts.Total() }

// RandomPlan draws an independent uniform count in [0, maxPerDay] for every
// date of year. Days drawing 0 are omitted. Negative bounds act as 0.
func RandomPlan(year, maxPerDay int, rng Rand) calendar.DateCommitMap {
	out := calendar.DateCommitMap{}
	maxPerDay = max(0, maxPerDay)
	it := calendar.Days(year)
	for {
		day, ok := it.Next()
		if !ok {
			break
		}
		out.Add(day, rng.IntN(maxPerDay+1))
	}
	return out
}

package calendar

import (
	"sort"
	"time"

	"github.com/sfrayan/goGreen/internal/intensity"
)

// DateCommitMap holds the commit count planned for each date of a year.
// Dates without commits are absent.
type DateCommitMap map[Date]int

// Add accumulates n commits on d. Non-positive n never creates an entry.
func (m DateCommitMap) Add(d Date, n int) {
	if n <= 0 {
		return
	}
	m[d] += n
}

// Get returns the count for d, 0 if absent.
func (m DateCommitMap) Get(d Date) int { return m[d] }

// Len returns the number of dates with at least one commit.
func (m DateCommitMap) Len() int { return len(m) }

// Total returns the sum of all counts.
func (m DateCommitMap) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Dates returns the dates of the map in ascending order.
func (m DateCommitMap) Dates() []Date {
	out := make([]Date, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Source is a 7-row bitmap addressed by (column, row), such as a
// pattern.Pattern.
type Source interface {
	Width() int
	On(c, r int) bool
}

// Mapper places a bitmap on the grid of Year.
type Mapper struct {
	Year      int
	Tiers     intensity.Tiers
	WeekStart time.Weekday

	// Offset shifts the bitmap right by this many week columns.
	Offset int
}

// Map places src on the Sunday-anchored grid of year and returns the
// resulting commit counts.
func Map(src Source, year int, tiers intensity.Tiers) DateCommitMap {
	return Mapper{Year: year, Tiers: tiers}.Map(src)
}

// Map returns the commit counts produced by src.
func (m Mapper) Map(src Source) DateCommitMap {
	out := DateCommitMap{}
	m.Into(out, src)
	return out
}

// Into accumulates the counts of src into dst and returns how many set
// cells were clipped because their date falls outside the year.
//
// Each set cell (c, r) lands on Anchor + (c+Offset)*7 + r days. Its count
// is the tier value for row r and is added to, not written over, any count
// already on that date.
func (m Mapper) Into(dst DateCommitMap, src Source) (clipped int) {
	tiers := intensity.Sanitize(m.Tiers)
	grid := NewGrid(m.Year, m.WeekStart)

	for c := 0; c < src.Width(); c++ {
		for r := 0; r < DaysPerWeek; r++ {
			if !src.On(c, r) {
				continue
			}
			d, ok := grid.DateAt(c+m.Offset, r)
			if !ok {
				clipped++
				continue
			}
			dst.Add(d, intensity.Resolve(intensity.TierForRow(r), tiers))
		}
	}
	return clipped
}

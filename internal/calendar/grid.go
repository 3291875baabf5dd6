package calendar

import "time"

// DaysPerWeek is the row count of a contribution grid.
const DaysPerWeek = 7

// Grid is the week-aligned layout of one year: columns are weeks and rows
// are weekday offsets from the week start. Column 0 begins at Anchor, the
// week start on or before January 1, so its leading cells may belong to the
// previous year.
type Grid struct {
	Year      int
	WeekStart time.Weekday
	Anchor    Date
}

// NewGrid lays out year with weeks beginning on weekStart.
func NewGrid(year int, weekStart time.Weekday) Grid {
	return Grid{Year: year, WeekStart: weekStart, Anchor: Anchor(year, weekStart)}
}

// Anchor returns the first weekStart on or before January 1 of year.
func Anchor(year int, weekStart time.Weekday) Date {
	jan1 := NewDate(year, time.January, 1)
	back := (int(jan1.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek
	return jan1.AddDays(-back)
}

// DateAt returns the date of cell (c, r) and whether it falls inside the
// grid's year.
func (g Grid) DateAt(c, r int) (Date, bool) {
	d := g.Anchor.AddDays(c*DaysPerWeek + r)
	return d, d.Year == g.Year
}

// Position returns the (column, row) cell of d.
func (g Grid) Position(d Date) (c, r int) {
	n := d.DaysSince(g.Anchor)
	return n / DaysPerWeek, n % DaysPerWeek
}

// Columns returns the number of week columns needed to cover the year.
func (g Grid) Columns() int {
	c, _ := g.Position(NewDate(g.Year, time.December, 31))
	return c + 1
}

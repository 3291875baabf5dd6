package glyph

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// Height is the row count of every glyph; it matches the seven weekdays
	// of a contribution grid column.
	Height = 7

	// Width is the column count of every glyph in the current font.
	Width = 5
)

// Column is one vertical slice of a glyph, top row first.
type Column [Height]bool

// Glyph is the bitmap of a single character, stored column-major because
// the calendar consumes glyphs one week (column) at a time.
type Glyph struct {
	cols []Column
}

// Width returns the number of columns.
func (g Glyph) Width() int { return len(g.cols) }

// Height returns the number of rows (always Height).
func (g Glyph) Height() int { return Height }

// Column returns column c. Out of range columns are blank.
func (g Glyph) Column(c int) Column {
	if c < 0 || c >= len(g.cols) {
		return Column{}
	}
	return g.cols[c]
}

// On reports whether the cell at (col, row) is set.
func (g Glyph) On(col, row int) bool {
	if row < 0 || row >= Height {
		return false
	}
	return g.Column(col)[row]
}

// String draws the glyph with '#' for set cells and '.' for clear ones.
func (g Glyph) String() string {
	var b strings.Builder
	for r := 0; r < Height; r++ {
		for c := range g.cols {
			if g.cols[c][r] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if r < Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var (
	glyphs = map[rune]Glyph{}
	blank  = Glyph{cols: make([]Column, Width)}
)

func init() {
	for ch, rows := range font {
		g, err := parse(ch, rows)
		if err != nil {
			panic(err)
		}
		glyphs[ch] = g
	}
}

// parse converts the row strings of the font table into a column-major glyph.
func parse(ch rune, rows [Height]string) (Glyph, error) {
	width := len(rows[0])
	cols := make([]Column, width)
	for r, row := range rows {
		if len(row) != width {
			return Glyph{}, fmt.Errorf("glyph %q: row %d has width %d, want %d", ch, r, len(row), width)
		}
		for c := 0; c < width; c++ {
			switch row[c] {
			case '1':
				cols[c][r] = true
			case '0':
			default:
				return Glyph{}, fmt.Errorf("glyph %q: invalid cell %q at row %d col %d", ch, row[c], r, c)
			}
		}
	}
	return Glyph{cols: cols}, nil
}

// Lookup returns the glyph for r. Unsupported runes, including space,
// resolve to the blank glyph.
func Lookup(r rune) Glyph {
	if g, ok := glyphs[r]; ok {
		return g
	}
	return blank
}

// Supported reports whether r has a dedicated glyph.
func Supported(r rune) bool {
	_, ok := glyphs[r]
	return ok
}

// Runes lists every supported rune in ascending order.
func Runes() []rune {
	out := make([]rune, 0, len(glyphs))
	for r := range glyphs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

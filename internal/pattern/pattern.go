// Package pattern lays glyphs side by side into a single bitmap that is as
// tall as a contribution grid week.
package pattern

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/sfrayan/goGreen/internal/glyph"
)

// Gap is the number of blank columns between two glyphs.
const Gap = 1

// Rows is the height of every pattern.
const Rows = glyph.Height

// Pattern is an immutable sequence of 7-cell columns.
type Pattern struct {
	cols []glyph.Column
}

// Build renders text into a pattern.
//
// The text is NFC-normalized and uppercased before lookup. Each glyph's
// columns are appended verbatim, followed by Gap blank columns unless it is
// the last glyph. Unsupported characters render as blank glyphs. An empty
// string yields a zero-width pattern.
func Build(text string) Pattern {
	letters := []rune(Normalize(text))
	if len(letters) == 0 {
		return Pattern{}
	}

	width := 0
	for _, r := range letters {
		width += glyph.Lookup(r).Width()
	}
	width += (len(letters) - 1) * Gap

	cols := make([]glyph.Column, 0, width)
	for i, r := range letters {
		g := glyph.Lookup(r)
		for c := 0; c < g.Width(); c++ {
			cols = append(cols, g.Column(c))
		}
		if i < len(letters)-1 {
			for k := 0; k < Gap; k++ {
				cols = append(cols, glyph.Column{})
			}
		}
	}
	return Pattern{cols: cols}
}

// Normalize applies the case and Unicode normalization Build uses.
func Normalize(text string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(text))
}

// Unsupported returns the runes of text, after normalization, that have no
// glyph and would be drawn blank. Whitespace is expected to be blank and is
// not reported. Each rune appears once, in order of first use.
func Unsupported(text string) []rune {
	var out []rune
	for _, r := range Normalize(text) {
		if unicode.IsSpace(r) || glyph.Supported(r) || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FromColumns builds a pattern from raw columns. The slice is copied.
func FromColumns(cols ...glyph.Column) Pattern {
	out := make([]glyph.Column, len(cols))
	copy(out, cols)
	return Pattern{cols: out}
}

// FromRows parses Rows strings of '#'/'1' (set) and '.'/'0'/' ' (clear)
// cells. All rows must have the same length.
func FromRows(rows ...string) (Pattern, error) {
	if len(rows) != Rows {
		return Pattern{}, fmt.Errorf("pattern needs %d rows, got %d", Rows, len(rows))
	}
	width := len(rows[0])
	cols := make([]glyph.Column, width)
	for r, row := range rows {
		if len(row) != width {
			return Pattern{}, fmt.Errorf("row %d has width %d, want %d", r, len(row), width)
		}
		for c := 0; c < width; c++ {
			switch row[c] {
			case '#', '1':
				cols[c][r] = true
			case '.', '0', ' ':
			default:
				return Pattern{}, fmt.Errorf("row %d col %d: invalid cell %q", r, c, row[c])
			}
		}
	}
	return Pattern{cols: cols}, nil
}

// Width returns the number of columns.
func (p Pattern) Width() int { return len(p.cols) }

// Column returns column c, or a blank column when c is out of range.
func (p Pattern) Column(c int) glyph.Column {
	if c < 0 || c >= len(p.cols) {
		return glyph.Column{}
	}
	return p.cols[c]
}

// On reports whether cell (c, r) is set.
func (p Pattern) On(c, r int) bool {
	if r < 0 || r >= Rows {
		return false
	}
	return p.Column(c)[r]
}

// Count returns the number of set cells.
func (p Pattern) Count() int {
	n := 0
	for _, col := range p.cols {
		for _, on := range col {
			if on {
				n++
			}
		}
	}
	return n
}

// String draws the pattern row by row with '#' and '.'.
func (p Pattern) String() string {
	var b strings.Builder
	for r := 0; r < Rows; r++ {
		for _, col := range p.cols {
			if col[r] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if r < Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Package glyph holds the fixed 5x7 bitmap font used to draw text onto a
// contribution grid.
//
// Every glyph is Height rows tall and Width columns wide. Lookup never fails:
// runes outside the font (space included) resolve to a blank glyph of the
// standard width, so arbitrary input still produces a well-formed pattern.
package glyph

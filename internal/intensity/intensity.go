// Package intensity maps a bitmap row to a shading tier and a tier to a
// commit count.
package intensity

import (
	"strconv"
	"strings"
)

// Tiers are commit counts indexed by shading tier, lightest first.
type Tiers []int

// Default is used when no usable tier list is configured.
var Default = Tiers{1, 4, 8}

// Tier indexes for the three shading bands of a 7-row glyph.
const (
	TierLight  = 0
	TierMedium = 1
	TierDark   = 2
)

// TierForRow returns the shading tier of a glyph row: the outer rows are
// lightest and the middle three darkest.
func TierForRow(r int) int {
	switch r {
	case 0, 6:
		return TierLight
	case 1, 5:
		return TierMedium
	default:
		return TierDark
	}
}

// Resolve returns the commit count of tier t. Tiers past the end of the
// list clamp to the last entry. The list must not be empty.
func Resolve(t int, tiers Tiers) int {
	if t < 0 {
		t = 0
	}
	return tiers[min(t, len(tiers)-1)]
}

// Resolve is the method form of the package-level Resolve.
func (t Tiers) Resolve(tier int) int {
	return Resolve(tier, t)
}

// String formats the list the way Parse reads it.
func (t Tiers) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Parse reads a comma separated tier list. Entries that are not integers
// count as 0 and negative entries are raised to 0; either makes ok false.
// A blank list returns Default and ok=false.
func Parse(csv string) (Tiers, bool) {
	if strings.TrimSpace(csv) == "" {
		return Default.clone(), false
	}
	ok := true
	var tiers Tiers
	for _, part := range strings.Split(csv, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			ok = false
		}
		tiers = append(tiers, max(0, n))
	}
	return tiers, ok
}

// Sanitize returns a copy of t with negative entries raised to 0, or
// Default when t is empty.
func Sanitize(t Tiers) Tiers {
	if len(t) == 0 {
		return Default.clone()
	}
	out := make(Tiers, len(t))
	for i, v := range t {
		out[i] = max(0, v)
	}
	return out
}

func (t Tiers) clone() Tiers {
	out := make(Tiers, len(t))
	copy(out, t)
	return out
}

package intensity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tiers := Tiers{1, 4, 8}

	tests := []struct {
		name string
		tier int
		want int
	}{
		{"lightest", 0, 1},
		{"medium", 1, 4},
		{"darkest", 2, 8},
		{"clamped", 5, 8},
		{"negative clamps to first", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.tier, tiers))
			assert.Equal(t, tt.want, tiers.Resolve(tt.tier))
		})
	}
}

func TestResolve_ShortList(t *testing.T) {
	assert.Equal(t, 3, Resolve(TierDark, Tiers{3}))
	assert.Equal(t, 2, Resolve(TierDark, Tiers{1, 2}))
}

func TestTierForRow(t *testing.T) {
	want := []int{TierLight, TierMedium, TierDark, TierDark, TierDark, TierMedium, TierLight}
	for r, tier := range want {
		assert.Equal(t, tier, TierForRow(r), "row %d", r)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		want   Tiers
		wantOK bool
	}{
		{"default form", "1,4,8", Tiers{1, 4, 8}, true},
		{"spaces", " 2 , 5 ", Tiers{2, 5}, true},
		{"single", "7", Tiers{7}, true},
		{"negative raised", "1,-3,8", Tiers{1, 0, 8}, false},
		{"garbage becomes zero", "1,x,8", Tiers{1, 0, 8}, false},
		{"blank falls back", "", Tiers{1, 4, 8}, false},
		{"whitespace falls back", "   ", Tiers{1, 4, 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.csv)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParse_DefaultNotAliased(t *testing.T) {
	got, _ := Parse("")
	got[0] = 99
	assert.Equal(t, 1, Default[0])
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, Tiers{1, 4, 8}, Sanitize(nil))
	assert.Equal(t, Tiers{0, 2}, Sanitize(Tiers{-1, 2}))
}

func TestTiers_String(t *testing.T) {
	assert.Equal(t, "1,9,4", Tiers{1, 9, 4}.String())
}

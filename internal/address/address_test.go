package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		number string
		street string
		suburb string
	}{
		{"plain", "1005 Oliphant Road, Raureka", "1005", "OLIPHANT ROAD", "raureka"},
		{"unit letter", "153A Kennedy Road, Marewa", "153A", "KENNEDY ROAD", "marewa"},
		{"quoted", `"22 White Street, Taradale"`, "22", "WHITE STREET", "taradale"},
		{"region stripped", "7 Georges Drive, Napier South, Hawke's Bay 4110", "7", "GEORGES DRIVE", "napier south"},
		{"no suburb", "35 Pukeko Place", "35", "PUKEKO PLACE", ""},
		{"no number", "Lot 4 Harrier Place, Flaxmere", "", "", "flaxmere"},
		{"empty", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.in)
			assert.Equal(t, tt.number, p.Number)
			assert.Equal(t, tt.street, p.Street)
			assert.Equal(t, tt.suburb, p.Suburb)
		})
	}
}

// Any non-empty number must be the leading digits (plus optional letter) of
// the address's first comma segment.
func TestParseNumberPrefix(t *testing.T) {
	addrs := []string{
		"1005 Oliphant Road, Raureka",
		"7D Shakespeare Road, Bluff Hill",
		"2/15 Tennyson Street, Napier Central",
		"Flat 1, 9 Milton Road",
		"???",
	}
	for _, a := range addrs {
		p := Parse(a)
		if p.Number == "" {
			continue
		}
		first := strings.TrimSpace(strings.ReplaceAll(strings.SplitN(a, ",", 2)[0], `"`, ""))
		assert.True(t, strings.HasPrefix(first, p.Number), "%s: %q not prefix of %q", a, p.Number, first)
	}
}

func TestVariantsContainsCanonical(t *testing.T) {
	tbl := DefaultTables()
	for _, s := range []string{"Oliphant Road", "MAIN ST", "Marine Parade North", "The Mall"} {
		vars := tbl.Variants(s)
		require.NotEmpty(t, vars)
		assert.Equal(t, strings.ToUpper(s), vars[0])
	}
}

func TestVariantsAbbreviation(t *testing.T) {
	tbl := DefaultTables()
	vars := tbl.Variants("OLIPHANT ROAD")
	assert.Contains(t, vars, "OLIPHANT RD")
	assert.Contains(t, vars, "OLIPHANT")

	// Expansion of an already-abbreviated name.
	vars = tbl.Variants("OLIPHANT RD")
	assert.Contains(t, vars, "OLIPHANT ROAD")
}

func TestVariantsDirectionalSuffix(t *testing.T) {
	tbl := DefaultTables()
	vars := tbl.Variants("MARINE PARADE NORTH")
	assert.Contains(t, vars, "MARINE PARADE")
	assert.Contains(t, vars, "MARINE PDE")
}

func TestVariantsThePrefixAndPunctuation(t *testing.T) {
	tbl := DefaultTables()
	assert.Contains(t, tbl.Variants("THE ESPLANADE"), "ESPLANADE")
	assert.Contains(t, tbl.Variants("ST AUBYN'S STREET"), "ST AUBYNS STREET")
}

func TestVariantsDeduplicate(t *testing.T) {
	tbl := DefaultTables()
	vars := tbl.Variants("HIGH STREET")
	seen := map[string]bool{}
	for _, v := range vars {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}

func TestGuessTAs(t *testing.T) {
	tbl := DefaultTables()

	assert.Equal(t, []int{60}, tbl.GuessTAs("taradale"))
	assert.Equal(t, []int{62}, tbl.GuessTAs("havelock north"))

	// Substring match: "napier south" hits both the exact entry and "napier".
	assert.Equal(t, []int{60}, tbl.GuessTAs("napier south"))

	// Unknown suburb falls back to the confirmed pair.
	assert.Equal(t, []int{60, 62}, tbl.GuessTAs("middle of nowhere"))

	// Empty suburb searches everything.
	assert.Equal(t, []int{60, 62, 61, 63}, tbl.GuessTAs(""))
}

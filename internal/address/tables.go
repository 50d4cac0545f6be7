package address

import (
	"sort"
	"strings"
)

// Tables holds the static lookup data the normalizer needs. Callers build
// one from config so tests can substitute fixtures.
type Tables struct {
	// Abbreviations maps full street types to their roll abbreviations,
	// e.g. ROAD -> RD. Applied whole-word in both directions.
	Abbreviations map[string]string

	// SuburbTA maps lowercase suburb names to territorial authority codes.
	// Lookup is by substring, so "napier south" hits the "napier" entry.
	SuburbTA map[string]int

	// KnownTAs is every TA code the valuation dataset is known to cover.
	KnownTAs []int

	// DefaultTAs is the fallback when a suburb matches nothing.
	DefaultTAs []int
}

// DefaultTables returns the Hawke's Bay lookup data.
// Confirmed codes: 60=Napier, 62=Hastings. 61 and 63 are the presumed
// Central Hawke's Bay and Wairoa codes and are searched but never defaulted.
func DefaultTables() Tables {
	return Tables{
		Abbreviations: map[string]string{
			"ROAD":      "RD",
			"STREET":    "ST",
			"AVENUE":    "AVE",
			"DRIVE":     "DR",
			"PLACE":     "PL",
			"COURT":     "CT",
			"LANE":      "LN",
			"BOULEVARD": "BLVD",
			"TERRACE":   "TER",
			"CRESCENT":  "CRES",
			"HIGHWAY":   "HWY",
			"PARADE":    "PDE",
			"WAY":       "WY",
			"GROVE":     "GR",
			"CLOSE":     "CL",
			"WALK":      "WK",
			"MALL":      "ML",
			"CIRCUIT":   "CCT",
			"RISE":      "RSE",
		},
		SuburbTA: map[string]int{
			// Napier (60)
			"napier": 60, "taradale": 60, "ahuriri": 60, "hospital hill": 60,
			"westshore": 60, "pirimai": 60, "onekawa": 60, "mclean park": 60,
			"napier central": 60, "napier south": 60, "bluff hill": 60,
			// Hastings (62)
			"hastings": 62, "havelock north": 62, "raureka": 62, "flaxmere": 62,
			"camria": 62, "mayfair": 62, "frimley": 62, "st leonards": 62,
			"mahora": 62, "parkvale": 62, "akina": 62, "clive": 62,
			// Central Hawke's Bay (61)
			"waipukurau": 61, "waipawa": 61, "otane": 61, "tikokino": 61,
			"takapau": 61,
			// Wairoa (63)
			"wairoa": 63, "mahia": 63, "frasertown": 63, "tuai": 63,
		},
		KnownTAs:   []int{60, 62, 61, 63},
		DefaultTAs: []int{60, 62},
	}
}

// GuessTAs returns the TA codes worth searching for a suburb. An empty
// suburb means every known TA; an unrecognized one means the defaults.
func (t Tables) GuessTAs(suburb string) []int {
	if suburb == "" {
		return append([]int(nil), t.KnownTAs...)
	}

	seen := map[int]bool{}
	var codes []int
	for key, code := range t.SuburbTA {
		if strings.Contains(suburb, key) && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return append([]int(nil), t.DefaultTAs...)
	}
	sort.Ints(codes)
	return codes
}

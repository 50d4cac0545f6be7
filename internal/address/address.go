// Package address normalizes free-text property addresses into the
// components the valuation roll is keyed on. Everything here is pure:
// no I/O, no external lookups.
package address

import (
	"regexp"
	"sort"
	"strings"
)

// Parsed holds the components extracted from a raw address string.
// Number and Street are empty when the leading numeric token is missing;
// parsing never fails outright.
type Parsed struct {
	Number string // may carry a unit letter, e.g. "153A"
	Street string // uppercased
	Suburb string // lowercased, region/postcode stripped
}

var (
	numberStreet = regexp.MustCompile(`^(\d+[A-Z]?)\s+(.+)`)
	regionSuffix = regexp.MustCompile(`\s*hawke'?s?\s*bay\s*\d*`)
	punctuation  = regexp.MustCompile(`[^\w\s]`)
)

// Parse splits an address of the form "NUMBER[LETTER] STREET, SUBURB[, REGION]".
// Quotes are stripped and the first comma delimits the suburb. When no
// leading number is found the street fields stay empty and only the suburb
// (possibly empty) is returned.
func Parse(addr string) Parsed {
	addr = strings.TrimSpace(strings.ReplaceAll(addr, `"`, ""))

	parts := strings.SplitN(addr, ",", 2)
	main := strings.TrimSpace(parts[0])

	suburb := ""
	if len(parts) > 1 {
		suburb = cleanSuburb(strings.SplitN(parts[1], ",", 2)[0])
	}

	m := numberStreet.FindStringSubmatch(main)
	if m == nil {
		return Parsed{Suburb: suburb}
	}
	return Parsed{
		Number: m[1],
		Street: strings.ToUpper(strings.TrimSpace(m[2])),
		Suburb: suburb,
	}
}

func cleanSuburb(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = regionSuffix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Variants generates candidate spellings of a street name to absorb the
// abbreviation and suffix mismatches between listing sites and the roll.
// The canonical (uppercased) name comes first; the remainder is sorted so
// search order is deterministic.
func (t Tables) Variants(street string) []string {
	canonical := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(street)), ",")

	set := map[string]bool{canonical: true}

	// Fully abbreviated and fully expanded forms.
	if abbr := t.abbreviate(canonical); abbr != canonical {
		set[abbr] = true
	}
	if exp := t.expand(canonical); exp != canonical {
		set[exp] = true
	}

	// Directional suffix removal, plus the abbreviated base.
	for _, suffix := range []string{" NORTH", " SOUTH", " EAST", " WEST", " N", " S", " E", " W"} {
		if strings.HasSuffix(canonical, suffix) {
			base := strings.TrimSpace(strings.TrimSuffix(canonical, suffix))
			set[base] = true
			if abbr := t.abbreviate(base); abbr != base {
				set[abbr] = true
			}
		}
	}

	// Drop the trailing street-type token.
	if words := strings.Fields(canonical); len(words) > 1 {
		set[strings.Join(words[:len(words)-1], " ")] = true
	}

	// "THE MALL" is often rolled as just "MALL".
	if strings.HasPrefix(canonical, "THE ") {
		set[canonical[4:]] = true
	}

	if noPunct := strings.TrimSpace(punctuation.ReplaceAllString(canonical, "")); noPunct != canonical {
		set[noPunct] = true
	}

	delete(set, canonical)
	rest := make([]string, 0, len(set))
	for v := range set {
		if v != "" {
			rest = append(rest, v)
		}
	}
	sort.Strings(rest)
	return append([]string{canonical}, rest...)
}

func (t Tables) abbreviate(s string) string {
	for full, abbr := range t.Abbreviations {
		s = replaceWord(s, full, abbr)
	}
	return s
}

func (t Tables) expand(s string) string {
	for full, abbr := range t.Abbreviations {
		s = replaceWord(s, abbr, full)
	}
	return s
}

// replaceWord swaps whole-word occurrences of from with to.
func replaceWord(s, from, to string) string {
	words := strings.Fields(s)
	changed := false
	for i, w := range words {
		if w == from {
			words[i] = to
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(words, " ")
}

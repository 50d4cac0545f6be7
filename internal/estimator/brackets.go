// Package estimator infers price intervals for listings that show no
// explicit price, from the price-filter brackets they were observed in,
// and scores the resulting value gap against the government valuation.
package estimator

import "github.com/rotisserie/eris"

// ErrInvalidRange marks a bad bracket configuration. This is a caller bug,
// fatal at setup time.
var ErrInvalidRange = eris.New("estimator: invalid bracket range")

// Bracket is a closed-open price interval [Lo, Hi).
type Bracket struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// GenerateBrackets produces contiguous, non-overlapping brackets of the
// given step covering [min, max). The final bracket is shortened when the
// range is not a multiple of the step.
func GenerateBrackets(min, max, step int) ([]Bracket, error) {
	if step <= 0 {
		return nil, eris.Wrapf(ErrInvalidRange, "step %d must be positive", step)
	}
	if min >= max {
		return nil, eris.Wrapf(ErrInvalidRange, "min %d must be below max %d", min, max)
	}

	var brackets []Bracket
	for lo := min; lo < max; {
		hi := lo + step
		if hi > max {
			hi = max
		}
		brackets = append(brackets, Bracket{Lo: lo, Hi: hi})
		lo = hi
	}
	return brackets, nil
}

// Package oddsmath converts between American prices, decimal odds, and
// implied probabilities, and removes bookmaker vig from two-way quotes.
package oddsmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrice is returned for American prices in the (-100, 100)
// dead zone, which no book quotes.
var ErrInvalidPrice = errors.New("oddsmath: invalid american price")

// AmericanToDecimal converts an American price to decimal odds.
func AmericanToDecimal(american int) (float64, error) {
	if american > -100 && american < 100 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPrice, american)
	}
	if american > 0 {
		return float64(american)/100 + 1, nil
	}
	return 100/float64(-american) + 1, nil
}

// DecimalToImplied converts decimal odds to the implied win probability,
// vig included.
func DecimalToImplied(dec float64) (float64, error) {
	if dec <= 1 {
		return 0, fmt.Errorf("oddsmath: decimal odds must exceed 1, got %v", dec)
	}
	return 1 / dec, nil
}

// ImpliedFromAmerican is the composition of the two conversions above.
func ImpliedFromAmerican(american int) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return DecimalToImplied(dec)
}

// NetPrice returns b, the net odds offered per unit staked, for an
// American price. This is the b in the Kelly formula.
func NetPrice(american int) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return dec - 1, nil
}

// ProbabilityToAmerican converts a fair probability back to an American
// price.
func ProbabilityToAmerican(p float64) (int, error) {
	if p <= 0 || p >= 1 {
		return 0, fmt.Errorf("oddsmath: probability out of range: %v", p)
	}
	if p >= 0.5 {
		return -int(math.Round(p / (1 - p) * 100)), nil
	}
	return int(math.Round((1 - p) / p * 100)), nil
}

// RemoveVigMultiplicative normalizes a two-way market's implied
// probabilities so they sum to one, splitting the vig proportionally.
func RemoveVigMultiplicative(probA, probB float64) (fairA, fairB float64, err error) {
	if probA <= 0 || probB <= 0 {
		return 0, 0, fmt.Errorf("oddsmath: probabilities must be positive: %v, %v", probA, probB)
	}
	overround := probA + probB
	if overround <= 0 {
		return 0, 0, fmt.Errorf("oddsmath: degenerate overround %v", overround)
	}
	return probA / overround, probB / overround, nil
}

package edge

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wagerlab/linehawk/pkg/oddsmath"
)

// Sizer computes fractional-Kelly stake sizes as a share of bankroll.
type Sizer struct {
	fraction decimal.Decimal // multiplier on full Kelly, e.g. 0.25
	maxBet   decimal.Decimal // hard cap on any single stake fraction
}

// NewSizer builds a sizer with the given Kelly fraction and max single-bet
// fraction. Both must sit in (0, 1].
func NewSizer(kellyFraction, maxBetFraction float64) (*Sizer, error) {
	if kellyFraction <= 0 || kellyFraction > 1 {
		return nil, fmt.Errorf("edge: kelly fraction %.3f out of (0,1]", kellyFraction)
	}
	if maxBetFraction <= 0 || maxBetFraction > 1 {
		return nil, fmt.Errorf("edge: max bet fraction %.3f out of (0,1]", maxBetFraction)
	}
	return &Sizer{
		fraction: decimal.NewFromFloat(kellyFraction),
		maxBet:   decimal.NewFromFloat(maxBetFraction),
	}, nil
}

// Stake returns the bankroll fraction to wager given the tier's win
// probability, the American price on the recommended side, and the tier's
// Kelly ceiling. Full Kelly is (b·p − q) / b with b the net decimal odds;
// the result is scaled by the configured fraction and clamped to the tier
// ceiling and the global max. Zero-or-negative expectation stakes zero —
// the stake is never negative.
func (s *Sizer) Stake(winProb float64, americanPrice int, tierMaxKelly float64) (decimal.Decimal, error) {
	if winProb <= 0 || winProb >= 1 {
		return decimal.Zero, fmt.Errorf("edge: win prob %.3f out of (0,1)", winProb)
	}
	b, err := oddsmath.NetPrice(americanPrice)
	if err != nil {
		return decimal.Zero, err
	}

	p := decimal.NewFromFloat(winProb)
	q := decimal.NewFromInt(1).Sub(p)
	bd := decimal.NewFromFloat(b)

	full := bd.Mul(p).Sub(q).Div(bd)
	if full.Sign() <= 0 {
		return decimal.Zero, nil
	}

	stake := full.Mul(s.fraction)
	if ceiling := decimal.NewFromFloat(tierMaxKelly); ceiling.Sign() > 0 && stake.GreaterThan(ceiling) {
		stake = ceiling
	}
	if stake.GreaterThan(s.maxBet) {
		stake = s.maxBet
	}
	return stake, nil
}

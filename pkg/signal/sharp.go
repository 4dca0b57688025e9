package signal

import (
	"fmt"
	"math"

	"github.com/wagerlab/linehawk/pkg/league"
)

// SharpMoneyStage grades the divergence between ticket count and money
// percentage on the home side. It never moves the predicted margin: its
// output is a trust signal the edge calculator applies to its own number —
// agreement with the model raises confidence, disagreement lowers it and
// can force a pass. Divergence below the league threshold means nothing in
// an efficient market and produces zero modulation.
type SharpMoneyStage struct{}

func (SharpMoneyStage) Kind() Kind { return KindSharpMoney }

func (SharpMoneyStage) Apply(ctx GameContext, prof league.Profile) Result {
	split := ctx.Split
	if split == nil {
		return neutral(KindSharpMoney)
	}

	divergence := math.Abs(split.MoneyPctHome - split.TicketPctHome)
	if divergence < prof.SharpDivergenceMin {
		return Result{Kind: KindSharpMoney, Applied: true,
			Notes: []string{fmt.Sprintf("divergence %.1f below threshold %.1f", divergence, prof.SharpDivergenceMin)}}
	}

	side := "home"
	if split.MoneyPctHome < split.TicketPctHome {
		side = "away"
	}

	// Highest tier cleared wins; tiers are configured ascending.
	var tier *league.SharpTier
	for i := range prof.SharpTiers {
		if divergence >= prof.SharpTiers[i].MinDivergence {
			tier = &prof.SharpTiers[i]
		}
	}
	if tier == nil {
		return Result{Kind: KindSharpMoney, Applied: true}
	}

	return Result{
		Kind:       KindSharpMoney,
		Applied:    true,
		SharpSide:  side,
		SharpShift: tier.Shift,
		SharpLabel: tier.Label,
		Notes: []string{fmt.Sprintf("%s money on %s (tickets %.0f%%, money %.0f%%)",
			tier.Label, side, split.TicketPctHome, split.MoneyPctHome)},
	}
}

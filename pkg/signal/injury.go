package signal

import (
	"fmt"
	"strings"

	"github.com/wagerlab/linehawk/pkg/league"
)

// depthFactor discounts non-starter injuries: losing depth matters, but a
// backup is not a starter.
const depthFactor = 0.30

// InjuryStage sums per-position injury impact for both teams. Impact is
// the position's tabled value times the capacity lost; three or more
// injuries inside one position group add a flat crisis penalty on top of
// the linear sum, because at that point the team is playing players who
// were never meant to dress. A quarterback change bypasses per-injury
// scoring for that team's QB room entirely and applies the tabled tier
// drop as a single delta.
type InjuryStage struct{}

func (InjuryStage) Kind() Kind { return KindInjury }

func (InjuryStage) Apply(ctx GameContext, prof league.Profile) Result {
	in := ctx.Injuries
	if in == nil || (len(in.Reports) == 0 && len(in.QBChanges) == 0) {
		return neutral(KindInjury)
	}

	res := Result{Kind: KindInjury, Applied: true}
	var weights []float64

	qbSwapped := make(map[string]bool)
	for _, qc := range in.QBChanges {
		qbSwapped[qc.TeamKey] = true
		drop, ok := prof.QBTierDrop[qc.Tier]
		if !ok {
			drop = prof.PositionValues[league.PosQB]
		}
		res.PointDelta += signFor(ctx.Game.HomeKey, qc.TeamKey) * drop
		res.Notes = append(res.Notes, fmt.Sprintf("QB change %s (%s): %.1f pts", qc.TeamKey, qc.Tier, drop))
		weights = append(weights, 0.50)
	}

	groupCounts := make(map[string]int) // teamKey/position -> injured count
	for _, rep := range in.Reports {
		if qbSwapped[rep.TeamKey] && rep.Position == league.PosQB {
			continue // already priced by the tier table
		}

		capacity, ok := capacityFraction[rep.Status]
		if !ok {
			capacity = capacityFraction[StatusQuestionable]
		}
		lost := prof.PositionValues[rep.Position] * (1 - capacity)
		if !rep.Starter {
			lost *= depthFactor
		}
		if lost == 0 {
			continue
		}

		res.PointDelta += signFor(ctx.Game.HomeKey, rep.TeamKey) * lost
		groupCounts[rep.TeamKey+"/"+string(rep.Position)]++

		w := 0.12 * (1 - capacity)
		if !rep.Starter {
			w *= depthFactor
		}
		weights = append(weights, w)
	}

	for group, n := range groupCounts {
		if n < prof.PositionCrisisCount {
			continue
		}
		teamKey := strings.SplitN(group, "/", 2)[0]
		res.PointDelta += signFor(ctx.Game.HomeKey, teamKey) * prof.PositionCrisisPenalty
		res.Notes = append(res.Notes, fmt.Sprintf("position-group crisis %s (%d injured)", group, n))
		weights = append(weights, 0.20)
	}

	res.Weight = combineWeights(weights...)
	return res
}

// signFor orients a penalty against the afflicted team: bad news for the
// home side lowers the home-favored margin, bad news for the away side
// raises it.
func signFor(homeKey, teamKey string) float64 {
	if teamKey == homeKey {
		return -1
	}
	return 1
}

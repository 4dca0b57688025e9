package signal

import (
	"fmt"
	"math"

	"github.com/wagerlab/linehawk/pkg/league"
)

// SituationalStage prices scheduling context: short rest, long travel, and
// elimination stakes. Each factor is capped individually so no single one
// can dominate the stage's sum.
type SituationalStage struct{}

func (SituationalStage) Kind() Kind { return KindSituational }

func (SituationalStage) Apply(ctx GameContext, prof league.Profile) Result {
	s := ctx.Situation
	if s == nil {
		return neutral(KindSituational)
	}

	res := Result{Kind: KindSituational, Applied: true}
	var weights []float64

	limit := prof.SituationalCap
	if limit <= 0 {
		limit = math.Inf(1)
	}

	// Rest deficit, per team. A team below the baseline gives up a
	// fractional penalty per missing day.
	if d := restPenalty(s.HomeRestDays, prof); d > 0 {
		res.PointDelta -= math.Min(d, limit)
		res.Notes = append(res.Notes, fmt.Sprintf("home short rest (%dd)", s.HomeRestDays))
		weights = append(weights, 0.10)
	}
	if d := restPenalty(s.AwayRestDays, prof); d > 0 {
		res.PointDelta += math.Min(d, limit)
		res.Notes = append(res.Notes, fmt.Sprintf("away short rest (%dd)", s.AwayRestDays))
		weights = append(weights, 0.10)
	}

	// Travel above the threshold penalizes the traveling side.
	if over := s.AwayTravelMiles - prof.TravelThreshold; over > 0 {
		d := math.Min(over/1000*prof.TravelPenaltyPer, limit)
		res.PointDelta += d
		res.Notes = append(res.Notes, fmt.Sprintf("away travel %.0f mi", s.AwayTravelMiles))
		weights = append(weights, 0.10)
	}

	// Elimination stakes are a small fixed boost for the desperate side.
	if s.HomeElimination != s.AwayElimination {
		bonus := math.Min(prof.EliminationBonus, limit)
		if s.HomeElimination {
			res.PointDelta += bonus
			res.Notes = append(res.Notes, "home elimination stakes")
		} else {
			res.PointDelta -= bonus
			res.Notes = append(res.Notes, "away elimination stakes")
		}
		weights = append(weights, 0.08)
	}

	res.Weight = combineWeights(weights...)
	return res
}

func restPenalty(restDays int, prof league.Profile) float64 {
	missing := prof.RestDayBaseline - restDays
	if missing <= 0 {
		return 0
	}
	return float64(missing) * prof.RestDayPenalty
}

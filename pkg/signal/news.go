package signal

import (
	"fmt"
	"math"
	"time"

	"github.com/wagerlab/linehawk/pkg/league"
)

// NewsStage converts breaking posts into injury-style point impact with an
// explicit time decay: full effect at observation, halving every
// half-life, excluded entirely past the configured maximum age. Posts
// under the relevance threshold are discarded rather than zero-weighted so
// the admitted signal set stays auditable.
type NewsStage struct{}

func (NewsStage) Kind() Kind { return KindNews }

func (NewsStage) Apply(ctx GameContext, prof league.Profile) Result {
	if len(ctx.News) == 0 {
		return neutral(KindNews)
	}

	res := Result{Kind: KindNews, Applied: true}
	var weights []float64
	admitted, discarded := 0, 0

	for _, item := range ctx.News {
		if item.Relevance < prof.NewsMinRelevance {
			discarded++
			continue
		}
		age := ctx.Now.Sub(item.ObservedAt)
		if age < 0 {
			age = 0
		}
		if prof.NewsMaxAge > 0 && age > prof.NewsMaxAge {
			discarded++
			continue
		}

		decay := Decay(age, prof.NewsHalfLife)
		impact := prof.PositionValues[item.Position] * item.Relevance * decay
		if impact == 0 {
			continue
		}

		res.PointDelta += signFor(ctx.Game.HomeKey, item.TeamKey) * impact
		weights = append(weights, 0.30*item.Relevance*decay)
		admitted++
	}

	if admitted == 0 {
		// Everything was stale or irrelevant: neutral, not an error.
		return neutral(KindNews)
	}

	res.Notes = append(res.Notes, fmt.Sprintf("%d posts admitted, %d discarded", admitted, discarded))
	res.Weight = combineWeights(weights...)
	return res
}

// Decay returns the exponential half-life multiplier for an elapsed age.
// It is monotonically non-increasing in age and tends to zero.
func Decay(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1
	}
	return math.Pow(0.5, age.Seconds()/halfLife.Seconds())
}

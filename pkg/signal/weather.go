package signal

import (
	"fmt"
	"math"

	"github.com/wagerlab/linehawk/pkg/league"
)

// weatherBucket maps a threshold crossing to a totals penalty. The tables
// are discrete on purpose: forecast precision does not justify a curve.
type weatherBucket struct {
	threshold float64
	penalty   float64 // points off the total
	label     string
}

var (
	tempBuckets = []weatherBucket{
		{10, -4.5, "extreme cold"},
		{20, -3.0, "hard freeze"},
		{32, -1.5, "sub-freezing"},
	}
	windBuckets = []weatherBucket{
		{25, -5.5, "severe wind"},
		{20, -4.0, "high wind"},
		{15, -2.5, "elevated wind"},
	}
	precipBuckets = []weatherBucket{
		{0.30, -3.5, "heavy precipitation"},
		{0.10, -2.0, "precipitation"},
	}
)

// spreadFraction is how much of the totals penalty bleeds into the spread.
const spreadFraction = 0.25

// WeatherStage converts a kickoff forecast into totals and spread deltas
// for outdoor venues. Covered venues produce a deterministic zero from the
// venue attribute; raw temperature never overrides the roof.
type WeatherStage struct{}

func (WeatherStage) Kind() Kind { return KindWeather }

func (WeatherStage) Apply(ctx GameContext, _ league.Profile) Result {
	if ctx.Game.Venue != nil && ctx.Game.Venue.IsCovered() {
		return Result{
			Kind:    KindWeather,
			Applied: true,
			Notes:   []string{fmt.Sprintf("covered venue %s, no weather effect", ctx.Game.Venue.Name)},
		}
	}
	if ctx.Forecast == nil || ctx.Game.Venue == nil {
		// No forecast, or venue without geolocation: degrade to neutral.
		return neutral(KindWeather)
	}

	res := Result{Kind: KindWeather, Applied: true}
	var weights []float64

	if p, label, ok := firstBelow(tempBuckets, ctx.Forecast.TempF); ok {
		res.TotalDelta += p
		res.Notes = append(res.Notes, fmt.Sprintf("%s (%.0fF)", label, ctx.Forecast.TempF))
		weights = append(weights, 0.15)
	}
	if p, label, ok := firstAbove(windBuckets, ctx.Forecast.WindMPH); ok {
		res.TotalDelta += p
		res.Notes = append(res.Notes, fmt.Sprintf("%s (%.0f mph)", label, ctx.Forecast.WindMPH))
		weights = append(weights, 0.15)
	}
	if p, label, ok := firstAbove(precipBuckets, ctx.Forecast.PrecipInches); ok {
		res.TotalDelta += p
		res.Notes = append(res.Notes, fmt.Sprintf("%s (%.2f in)", label, ctx.Forecast.PrecipInches))
		weights = append(weights, 0.10)
	}

	// Bad weather compresses margins: the spread delta pushes the
	// pre-adjustment margin toward zero, scaled off the totals penalty.
	if res.TotalDelta != 0 && ctx.BaselineMargin != 0 {
		dampen := math.Abs(res.TotalDelta) * spreadFraction
		if ctx.BaselineMargin > 0 {
			res.PointDelta = -math.Min(dampen, ctx.BaselineMargin)
		} else {
			res.PointDelta = math.Min(dampen, -ctx.BaselineMargin)
		}
	}

	res.Weight = combineWeights(weights...)
	return res
}

// firstBelow returns the penalty for the lowest threshold the value sits
// under, scanning most-severe first.
func firstBelow(buckets []weatherBucket, v float64) (float64, string, bool) {
	for _, b := range buckets {
		if v < b.threshold {
			return b.penalty, b.label, true
		}
	}
	return 0, "", false
}

// firstAbove returns the penalty for the highest threshold the value
// clears, scanning most-severe first.
func firstAbove(buckets []weatherBucket, v float64) (float64, string, bool) {
	for _, b := range buckets {
		if v >= b.threshold {
			return b.penalty, b.label, true
		}
	}
	return 0, "", false
}

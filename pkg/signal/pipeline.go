package signal

import "github.com/wagerlab/linehawk/pkg/league"

// SharpAssessment is the sharp-money stage's trust verdict, carried out of
// the pipeline for the edge calculator to apply against its own direction.
type SharpAssessment struct {
	Side  string  `json:"side"`
	Shift float64 `json:"shift"`
	Label string  `json:"label"`
}

// Combined is the pipeline's aggregate over all stages for one game.
type Combined struct {
	PointDelta float64          `json:"point_delta"` // home-favored, summed
	TotalDelta float64          `json:"total_delta"`
	Confidence float64          `json:"confidence"` // 1 − ∏(1 − w_i)
	Sharp      *SharpAssessment `json:"sharp,omitempty"`
	Results    []Result         `json:"results"`
}

// Pipeline runs the closed stage set and combines their outputs. Stages
// are independent and order-insensitive; the combination is the only place
// their results meet.
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds a pipeline from explicit stages, for tests that want
// a subset.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// DefaultPipeline wires all five adjustment variants.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		WeatherStage{},
		InjuryStage{},
		SituationalStage{},
		SharpMoneyStage{},
		NewsStage{},
	)
}

// Run applies every stage to the game context and folds the results:
// point deltas sum, confidence combines as independent evidence, and the
// sharp assessment is carried separately because it modulates trust rather
// than the margin.
func (p *Pipeline) Run(ctx GameContext, prof league.Profile) Combined {
	combined := Combined{Results: make([]Result, 0, len(p.stages))}
	var weights []float64

	for _, stage := range p.stages {
		res := stage.Apply(ctx, prof)
		combined.Results = append(combined.Results, res)
		if !res.Applied {
			continue
		}

		combined.PointDelta += res.PointDelta
		combined.TotalDelta += res.TotalDelta
		if res.Weight > 0 {
			weights = append(weights, res.Weight)
		}
		if res.SharpSide != "" {
			combined.Sharp = &SharpAssessment{Side: res.SharpSide, Shift: res.SharpShift, Label: res.SharpLabel}
		}
	}

	combined.Confidence = combineWeights(weights...)
	return combined
}

// Package edge turns baseline ratings, market quotes and combined
// adjustments into classified, stake-sized betting edges.
package edge

import (
	"fmt"
	"sort"

	"github.com/wagerlab/linehawk/pkg/league"
)

// Classifier maps edge magnitude onto a confidence tier. Bands partition
// the edge axis: [MinEdgePoints, band2.Min), [band2.Min, band3.Min), ...,
// [lastBand.Min, ∞). Everything below MinEdgePoints is the no-play band.
type Classifier struct {
	minEdge float64
	bands   []league.TierBand
}

// noPlayBand is the zero-stake band below the minimum edge threshold.
var noPlayBand = league.TierBand{Tier: league.TierNoPlay}

// NewClassifier validates the profile's band table: ascending, anchored at
// the minimum edge threshold, win probabilities sane. A malformed table is
// a configuration error that aborts the run.
func NewClassifier(prof league.Profile) (*Classifier, error) {
	if len(prof.TierBands) == 0 {
		return nil, fmt.Errorf("edge: league %s has no tier bands", prof.League)
	}

	bands := make([]league.TierBand, len(prof.TierBands))
	copy(bands, prof.TierBands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })

	if bands[0].Min != prof.MinEdgePoints {
		return nil, fmt.Errorf("edge: first band starts at %.2f, min edge is %.2f — gap or overlap",
			bands[0].Min, prof.MinEdgePoints)
	}
	for i, b := range bands {
		if i > 0 && b.Min <= bands[i-1].Min {
			return nil, fmt.Errorf("edge: band %q does not ascend", b.Tier)
		}
		if b.WinProb <= 0.5 || b.WinProb >= 1 {
			return nil, fmt.Errorf("edge: band %q win prob %.3f out of range", b.Tier, b.WinProb)
		}
		if b.MaxKelly < 0 || b.MaxKelly > 1 {
			return nil, fmt.Errorf("edge: band %q max kelly %.3f out of range", b.Tier, b.MaxKelly)
		}
	}

	return &Classifier{minEdge: prof.MinEdgePoints, bands: bands}, nil
}

// Classify returns the band for an absolute edge magnitude. Every finite
// value maps to exactly one band.
func (c *Classifier) Classify(edgeAbs float64) league.TierBand {
	if edgeAbs < c.minEdge {
		return noPlayBand
	}
	band := c.bands[0]
	for _, b := range c.bands {
		if edgeAbs >= b.Min {
			band = b
		}
	}
	return band
}

// Shift moves a band up or down the table by the given number of steps,
// clamped at the ends. Sharp-money agreement promotes tier eligibility;
// disagreement demotes it. Shifting the no-play band is a no-op: nothing
// promotes a non-play into a play.
func (c *Classifier) Shift(band league.TierBand, steps int) league.TierBand {
	if band.Tier == league.TierNoPlay || steps == 0 {
		return band
	}
	idx := -1
	for i, b := range c.bands {
		if b.Tier == band.Tier {
			idx = i
			break
		}
	}
	if idx < 0 {
		return band
	}
	idx += steps
	if idx < 0 {
		return noPlayBand
	}
	if idx >= len(c.bands) {
		idx = len(c.bands) - 1
	}
	return c.bands[idx]
}

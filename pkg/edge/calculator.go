package edge

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/market"
	"github.com/wagerlab/linehawk/pkg/ratings"
	"github.com/wagerlab/linehawk/pkg/signal"
)

// Side is the recommended side of the spread.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideNone Side = "none"
)

// sharpLabelVeryStrong is the divergence grade that vetoes plays it
// disagrees with.
const sharpLabelVeryStrong = "very_strong"

// Edge is the full computed record for one game: baseline, market,
// adjustments, classification and stake. Everything downstream — report,
// CLV log, metrics — reads from here.
type Edge struct {
	GameID   string `json:"game_id"`
	League   string `json:"league"`
	Week     int    `json:"week"`
	HomeName string `json:"home_name"`
	AwayName string `json:"away_name"`

	PredictedMargin float64 `json:"predicted_margin"` // home perspective
	MarketMargin    float64 `json:"market_margin"`
	EdgePoints      float64 `json:"edge_points"` // predicted − market

	Side    Side            `json:"side"`
	Tier    league.Tier     `json:"tier"`
	WinProb float64         `json:"win_prob"`
	Stake   decimal.Decimal `json:"stake_fraction"`
	Price   int             `json:"price"` // American price on Side

	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`

	StaleQuote   bool `json:"stale_quote,omitempty"`
	StaleRatings bool `json:"stale_ratings,omitempty"`

	Adjustments []signal.Result `json:"adjustments"`
}

// Playable reports whether the edge cleared the threshold and survived the
// sharp veto.
func (e *Edge) Playable() bool {
	return e.Tier != league.TierNoPlay && e.Side != SideNone
}

// Inputs carries everything Compute needs for one game. The quote is the
// freshest pre-kickoff snapshot the caller selected.
type Inputs struct {
	Game       market.Game
	HomeRating ratings.Result
	AwayRating ratings.Result
	Quote      market.OddsQuote
	QuoteStale bool
	Adjust     signal.Combined
}

// Calculator composes the baseline, adjustment sum and market line into a
// classified edge.
type Calculator struct {
	prof       league.Profile
	classifier *Classifier
	sizer      *Sizer
}

// NewCalculator wires a calculator for one league profile.
func NewCalculator(prof league.Profile, kellyFraction, maxBetFraction float64) (*Calculator, error) {
	cls, err := NewClassifier(prof)
	if err != nil {
		return nil, err
	}
	sz, err := NewSizer(kellyFraction, maxBetFraction)
	if err != nil {
		return nil, err
	}
	return &Calculator{prof: prof, classifier: cls, sizer: sz}, nil
}

// Compute produces the edge record for one game.
//
// Predicted margin is home rating minus away rating plus home field plus
// the summed adjustment deltas, all in the home-favored sign convention.
// The edge is that prediction minus the market's implied home margin;
// positive edge recommends the home side, negative the away side.
func (c *Calculator) Compute(in Inputs) (Edge, error) {
	predicted := in.HomeRating.Value - in.AwayRating.Value + c.prof.HomeFieldPoints + in.Adjust.PointDelta
	marketMargin := in.Quote.HomeMarketMargin()
	edgePoints := predicted - marketMargin

	e := Edge{
		GameID:          in.Game.ID,
		League:          in.Game.League,
		Week:            in.Game.Week,
		HomeName:        in.Game.HomeName,
		AwayName:        in.Game.AwayName,
		PredictedMargin: predicted,
		MarketMargin:    marketMargin,
		EdgePoints:      edgePoints,
		Side:            SideNone,
		Tier:            league.TierNoPlay,
		Confidence:      in.Adjust.Confidence,
		StaleQuote:      in.QuoteStale,
		StaleRatings:    in.HomeRating.Stale || in.AwayRating.Stale,
		Adjustments:     in.Adjust.Results,
	}

	band := c.classifier.Classify(math.Abs(edgePoints))
	if band.Tier == league.TierNoPlay {
		e.Reason = fmt.Sprintf("edge %.2f below %.2f point threshold", edgePoints, c.prof.MinEdgePoints)
		return e, nil
	}

	side := SideHome
	if edgePoints < 0 {
		side = SideAway
	}

	// Sharp money modulates trust in our own number, not the number
	// itself. Agreement promotes the tier, disagreement demotes it, and a
	// very strong disagreement vetoes the play outright.
	if sharp := in.Adjust.Sharp; sharp != nil && sharp.Shift > 0 {
		agrees := string(side) == sharp.Side
		switch {
		case agrees:
			e.Confidence = clamp01(e.Confidence + sharp.Shift)
			band = c.classifier.Shift(band, 1)
		case sharp.Label == sharpLabelVeryStrong:
			e.Reason = fmt.Sprintf("passed: %s sharp money on %s against %.2f point edge",
				sharp.Label, sharp.Side, edgePoints)
			return e, nil
		default:
			e.Confidence = clamp01(e.Confidence - sharp.Shift)
			band = c.classifier.Shift(band, -1)
			if band.Tier == league.TierNoPlay {
				e.Reason = fmt.Sprintf("demoted to no-play by %s sharp money on %s", sharp.Label, sharp.Side)
				return e, nil
			}
		}
	}

	price := in.Quote.SpreadPriceHome
	if side == SideAway {
		price = in.Quote.SpreadPriceAway
	}

	stake, err := c.sizer.Stake(band.WinProb, price, band.MaxKelly)
	if err != nil {
		return e, fmt.Errorf("edge: sizing %s: %w", in.Game.ID, err)
	}

	e.Side = side
	e.Tier = band.Tier
	e.WinProb = band.WinProb
	e.Stake = stake
	e.Price = price
	e.Reason = fmt.Sprintf("%.2f point edge on %s (%s)", math.Abs(edgePoints), side, band.Tier)
	return e, nil
}

// Rank orders edges for the report: playable first, then by absolute edge
// descending, ties broken by game ID for stable output.
func Rank(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Playable(), out[j].Playable()
		if pi != pj {
			return pi
		}
		ai, aj := math.Abs(out[i].EdgePoints), math.Abs(out[j].EdgePoints)
		if ai != aj {
			return ai > aj
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

// Playable filters to the edges worth betting.
func Playable(edges []Edge) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Playable() {
			out = append(out, e)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

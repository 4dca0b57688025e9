// Package signal implements the adjustment pipeline: independent stages
// that each turn one class of evidence — weather, injuries, situation,
// sharp-money splits, breaking news — into a signed point delta and a
// confidence contribution. Stages are order-insensitive; the pipeline sums
// deltas and combines confidence as independent evidence.
package signal

import (
	"time"

	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/market"
)

// Kind tags the closed set of adjustment variants.
type Kind string

const (
	KindWeather     Kind = "weather"
	KindInjury      Kind = "injury"
	KindSituational Kind = "situational"
	KindSharpMoney  Kind = "sharp_money"
	KindNews        Kind = "news"
)

// Forecast is the venue forecast at kickoff, from the weather collaborator.
type Forecast struct {
	TempF        float64 `json:"temp_f"`
	WindMPH      float64 `json:"wind_mph"`
	PrecipInches float64 `json:"precip_inches"`
}

// InjuryStatus is the reported participation status.
type InjuryStatus string

const (
	StatusOut          InjuryStatus = "out"
	StatusDoubtful     InjuryStatus = "doubtful"
	StatusQuestionable InjuryStatus = "questionable"
	StatusLimited      InjuryStatus = "limited" // soft-tissue, playing at reduced capacity
	StatusProbable     InjuryStatus = "probable"
)

// capacityFraction is the expected playing capacity per status. Impact is
// position value times the capacity lost.
var capacityFraction = map[InjuryStatus]float64{
	StatusOut:          0.00,
	StatusDoubtful:     0.25,
	StatusQuestionable: 0.60,
	StatusLimited:      0.70,
	StatusProbable:     0.85,
}

// InjuryReport is one player's status for one game week.
type InjuryReport struct {
	TeamKey  string          `json:"team_key"`
	Position league.Position `json:"position"`
	Status   InjuryStatus    `json:"status"`
	Starter  bool            `json:"starter"`
	Player   string          `json:"player,omitempty"`
}

// QBChange records a starting-quarterback change and the replacement's
// tier. It dominates ordinary per-injury scoring for that team.
type QBChange struct {
	TeamKey string        `json:"team_key"`
	Tier    league.QBTier `json:"tier"`
}

// InjuryInputs bundles a game's injury evidence. Both teams can report a
// quarterback change in the same week; each carries its own tier drop.
type InjuryInputs struct {
	Reports   []InjuryReport `json:"reports"`
	QBChanges []QBChange     `json:"qb_changes,omitempty"`
}

// SituationFacts carries the scheduling context for one game.
type SituationFacts struct {
	HomeRestDays    int     `json:"home_rest_days"`
	AwayRestDays    int     `json:"away_rest_days"`
	AwayTravelMiles float64 `json:"away_travel_miles"`
	HomeElimination bool    `json:"home_elimination"`
	AwayElimination bool    `json:"away_elimination"`
}

// TicketSplit is the public-ticket vs. money percentage split on the home
// side of the spread.
type TicketSplit struct {
	TicketPctHome float64 `json:"ticket_pct_home"`
	MoneyPctHome  float64 `json:"money_pct_home"`
}

// NewsItem is a breaking post already scored for relevance by the news
// collaborator (or passed through for scoring here).
type NewsItem struct {
	TeamKey    string          `json:"team_key"`
	Position   league.Position `json:"position"`
	Text       string          `json:"text"`
	Relevance  float64         `json:"relevance"` // 0-1
	ObservedAt time.Time       `json:"observed_at"`
}

// GameContext is everything a stage may consume for one game. Absent
// evidence is nil; stages must return a neutral result for it.
type GameContext struct {
	Game           market.Game
	BaselineMargin float64 // rating differential + home field, pre-adjustment
	Forecast       *Forecast
	Injuries       *InjuryInputs
	Situation      *SituationFacts
	Split          *TicketSplit
	News           []NewsItem
	Now            time.Time
}

// Result is one stage's output. PointDelta is signed in the
// home-team-favored direction; TotalDelta adjusts the total-points
// prediction. Applied is false when the stage had no input — the defined
// neutral no-op, not an error.
type Result struct {
	Kind       Kind     `json:"kind"`
	PointDelta float64  `json:"point_delta"`
	TotalDelta float64  `json:"total_delta,omitempty"`
	Weight     float64  `json:"confidence_weight"`
	Applied    bool     `json:"applied"`
	Notes      []string `json:"notes,omitempty"`

	// Sharp-money stages modulate trust rather than the margin.
	SharpSide  string  `json:"sharp_side,omitempty"` // "home" or "away"
	SharpShift float64 `json:"sharp_shift,omitempty"`
	SharpLabel string  `json:"sharp_label,omitempty"`
}

// Stage is one adjustment variant. Implementations are pure: they never
// mutate the context and never block.
type Stage interface {
	Kind() Kind
	Apply(ctx GameContext, prof league.Profile) Result
}

// neutral returns the no-signal result for a stage.
func neutral(kind Kind) Result {
	return Result{Kind: kind}
}

// combineWeights folds independent evidence weights: 1 − ∏(1 − w). Several
// weak signals can outweigh one moderate signal, but the combination
// saturates toward 1.
func combineWeights(weights ...float64) float64 {
	remain := 1.0
	for _, w := range weights {
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
		remain *= 1 - w
	}
	return 1 - remain
}

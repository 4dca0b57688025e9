// Package league carries per-league tuning as configuration data. The
// pipeline itself is generic; everything that differs between leagues —
// home-field value, sharp thresholds, position values, tier bands — lives
// in a Profile so that no component branches on league identity.
package league

import "time"

// League identifies a top-level competition.
type League string

const (
	LeagueNFL   League = "nfl"
	LeagueNCAAF League = "ncaaf"
)

// Position is a roster position group in the injury value hierarchy.
type Position string

const (
	PosQB Position = "QB"
	PosRB Position = "RB"
	PosWR Position = "WR"
	PosTE Position = "TE"
	PosOL Position = "OL"
	PosDL Position = "DL"
	PosLB Position = "LB"
	PosDB Position = "DB"
	PosK  Position = "K"
)

// QBTier classifies the replacement when the starting quarterback changes.
// The tabled values are the historical drop in team scoring margin for
// each replacement class.
type QBTier string

const (
	QBTierVeteranBackup QBTier = "veteran_backup"
	QBTierJourneyman    QBTier = "journeyman"
	QBTierRookie        QBTier = "rookie_or_undrafted"
)

// Tier is a confidence band for a computed edge.
type Tier string

const (
	TierNoPlay   Tier = "no_play"
	TierMinimal  Tier = "minimal"
	TierLean     Tier = "lean"
	TierModerate Tier = "moderate"
	TierStrong   Tier = "strong"
	TierMaximum  Tier = "maximum"
)

// TierBand binds an edge-magnitude band to its historical win-rate estimate
// and Kelly ceiling. Bands are half-open [Min, next.Min) and must cover the
// axis with no gaps; they are recalibrated from CLV output over time, so
// they are configuration, not code.
type TierBand struct {
	Tier     Tier    `mapstructure:"tier" json:"tier"`
	Min      float64 `mapstructure:"min_points" json:"min_points"`
	WinProb  float64 `mapstructure:"win_prob" json:"win_prob"`
	MaxKelly float64 `mapstructure:"max_kelly" json:"max_kelly"`
}

// SharpTier grades a ticket/money divergence.
type SharpTier struct {
	MinDivergence float64 `mapstructure:"min_divergence" json:"min_divergence"` // percentage points
	Shift         float64 `mapstructure:"shift" json:"shift"`                   // confidence shift magnitude (0-1)
	Label         string  `mapstructure:"label" json:"label"`
}

// Profile is the full per-league tuning set.
type Profile struct {
	League League `mapstructure:"league" json:"league"`

	TeamCount       int     `mapstructure:"team_count" json:"team_count"`
	HomeFieldPoints float64 `mapstructure:"home_field_points" json:"home_field_points"`
	MinEdgePoints   float64 `mapstructure:"min_edge_points" json:"min_edge_points"`

	// Injury tables.
	PositionValues        map[Position]float64 `mapstructure:"position_values" json:"position_values"`
	QBTierDrop            map[QBTier]float64   `mapstructure:"qb_tier_drop" json:"qb_tier_drop"`
	PositionCrisisCount   int                  `mapstructure:"position_crisis_count" json:"position_crisis_count"`
	PositionCrisisPenalty float64              `mapstructure:"position_crisis_penalty" json:"position_crisis_penalty"`

	// Situational tuning.
	RestDayBaseline  int     `mapstructure:"rest_day_baseline" json:"rest_day_baseline"`
	RestDayPenalty   float64 `mapstructure:"rest_day_penalty" json:"rest_day_penalty"` // per missing day
	TravelThreshold  float64 `mapstructure:"travel_threshold_miles" json:"travel_threshold_miles"`
	TravelPenaltyPer float64 `mapstructure:"travel_penalty_per_1000mi" json:"travel_penalty_per_1000mi"`
	EliminationBonus float64 `mapstructure:"elimination_bonus" json:"elimination_bonus"`
	SituationalCap   float64 `mapstructure:"situational_cap" json:"situational_cap"` // per factor

	// Sharp-money tuning. Efficient markets need a lower divergence before
	// the signal means anything.
	SharpDivergenceMin float64     `mapstructure:"sharp_divergence_min" json:"sharp_divergence_min"`
	SharpTiers         []SharpTier `mapstructure:"sharp_tiers" json:"sharp_tiers"`

	// News tuning.
	NewsHalfLife     time.Duration `mapstructure:"news_half_life" json:"news_half_life"`
	NewsMinRelevance float64       `mapstructure:"news_min_relevance" json:"news_min_relevance"`
	NewsMaxAge       time.Duration `mapstructure:"news_max_age" json:"news_max_age"`

	// Confidence bands, ascending by Min. The band below MinEdgePoints is
	// implicitly no-play.
	TierBands []TierBand `mapstructure:"tier_bands" json:"tier_bands"`
}

// DefaultProfiles returns the stock tuning per league. Deployments override
// these through configuration; recalibration writes new band values here,
// never into code.
func DefaultProfiles() map[League]Profile {
	return map[League]Profile{
		LeagueNFL: {
			League:          LeagueNFL,
			TeamCount:       32,
			HomeFieldPoints: 2.0,
			MinEdgePoints:   1.5,

			PositionValues: map[Position]float64{
				PosQB: 7.0, PosRB: 1.5, PosWR: 1.2, PosTE: 0.8,
				PosOL: 1.0, PosDL: 1.0, PosLB: 0.9, PosDB: 1.1, PosK: 0.4,
			},
			QBTierDrop: map[QBTier]float64{
				QBTierVeteranBackup: 4.0,
				QBTierJourneyman:    6.0,
				QBTierRookie:        8.5,
			},
			PositionCrisisCount:   3,
			PositionCrisisPenalty: 1.5,

			RestDayBaseline:  6,
			RestDayPenalty:   0.4,
			TravelThreshold:  1000,
			TravelPenaltyPer: 0.5,
			EliminationBonus: 1.0,
			SituationalCap:   1.5,

			// NFL spread markets are the most efficient in sport.
			SharpDivergenceMin: 10,
			SharpTiers: []SharpTier{
				{MinDivergence: 10, Shift: 0.10, Label: "moderate"},
				{MinDivergence: 18, Shift: 0.20, Label: "strong"},
				{MinDivergence: 28, Shift: 0.35, Label: "very_strong"},
			},

			NewsHalfLife:     12 * time.Hour,
			NewsMinRelevance: 0.40,
			NewsMaxAge:       24 * time.Hour,

			TierBands: []TierBand{
				{Tier: TierMinimal, Min: 1.5, WinProb: 0.525, MaxKelly: 0.010},
				{Tier: TierLean, Min: 2.0, WinProb: 0.540, MaxKelly: 0.015},
				{Tier: TierModerate, Min: 2.75, WinProb: 0.565, MaxKelly: 0.025},
				{Tier: TierStrong, Min: 4.0, WinProb: 0.590, MaxKelly: 0.040},
				{Tier: TierMaximum, Min: 6.0, WinProb: 0.615, MaxKelly: 0.050},
			},
		},
		LeagueNCAAF: {
			League:          LeagueNCAAF,
			TeamCount:       133,
			HomeFieldPoints: 2.5,
			MinEdgePoints:   2.0,

			PositionValues: map[Position]float64{
				PosQB: 8.0, PosRB: 1.8, PosWR: 1.2, PosTE: 0.7,
				PosOL: 1.0, PosDL: 1.0, PosLB: 0.9, PosDB: 1.0, PosK: 0.5,
			},
			QBTierDrop: map[QBTier]float64{
				QBTierVeteranBackup: 4.5,
				QBTierJourneyman:    7.0,
				QBTierRookie:        10.0,
			},
			PositionCrisisCount:   3,
			PositionCrisisPenalty: 2.0,

			RestDayBaseline:  6,
			RestDayPenalty:   0.3,
			TravelThreshold:  800,
			TravelPenaltyPer: 0.6,
			EliminationBonus: 1.5,
			SituationalCap:   2.0,

			// College lines are softer; demand more divergence.
			SharpDivergenceMin: 15,
			SharpTiers: []SharpTier{
				{MinDivergence: 15, Shift: 0.10, Label: "moderate"},
				{MinDivergence: 25, Shift: 0.20, Label: "strong"},
				{MinDivergence: 35, Shift: 0.35, Label: "very_strong"},
			},

			NewsHalfLife:     18 * time.Hour,
			NewsMinRelevance: 0.45,
			NewsMaxAge:       36 * time.Hour,

			TierBands: []TierBand{
				{Tier: TierMinimal, Min: 2.0, WinProb: 0.522, MaxKelly: 0.010},
				{Tier: TierLean, Min: 3.0, WinProb: 0.538, MaxKelly: 0.015},
				{Tier: TierModerate, Min: 4.5, WinProb: 0.560, MaxKelly: 0.025},
				{Tier: TierStrong, Min: 6.5, WinProb: 0.585, MaxKelly: 0.040},
				{Tier: TierMaximum, Min: 9.0, WinProb: 0.610, MaxKelly: 0.050},
			},
		},
	}
}

// Lookup returns the profile for a league name, reporting whether it is
// known.
func Lookup(profiles map[League]Profile, name string) (Profile, bool) {
	p, ok := profiles[League(name)]
	return p, ok
}

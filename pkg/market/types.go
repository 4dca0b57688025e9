// Package market defines the matched-game and odds-quote records the edge
// pipeline consumes. Games are immutable once built for a week; a schedule
// republish supersedes the old record instead of mutating it. Odds quotes
// form an append-only series per game so line movement and closing-line
// value stay reconstructable.
package market

import (
	"sort"
	"time"
)

// RoofType describes the venue roof. Weather adjustments are driven by this
// attribute, never inferred from the forecast itself.
type RoofType string

const (
	RoofOpen        RoofType = "open"
	RoofDome        RoofType = "dome"
	RoofRetractable RoofType = "retractable_closed"
)

// Venue is where a game is played. Geolocation is optional; stages that
// need it must degrade when it is absent.
type Venue struct {
	Name     string   `json:"name"`
	Roof     RoofType `json:"roof"`
	City     string   `json:"city,omitempty"`
	Lat      float64  `json:"lat,omitempty"`
	Lon      float64  `json:"lon,omitempty"`
	HasGeo   bool     `json:"has_geo"`
	Altitude float64  `json:"altitude_ft,omitempty"`
}

// IsCovered reports whether the playing surface is sheltered from weather.
func (v *Venue) IsCovered() bool {
	return v != nil && (v.Roof == RoofDome || v.Roof == RoofRetractable)
}

// Game is a matched schedule entry keyed by canonical team identity.
type Game struct {
	ID       string    `json:"game_id"` // derived: "<away_key>|<home_key>"
	League   string    `json:"league"`
	Week     int       `json:"week"`
	HomeKey  string    `json:"home_key"`
	AwayKey  string    `json:"away_key"`
	HomeName string    `json:"home_name"`
	AwayName string    `json:"away_name"`
	Kickoff  time.Time `json:"kickoff"`
	Venue    *Venue    `json:"venue,omitempty"`

	// PriorKickoff holds the previously published kickoff when the schedule
	// source republished the matchup at a new time.
	PriorKickoff *time.Time `json:"prior_kickoff,omitempty"`
}

// OddsQuote is a single book snapshot for a game. Quotes are never
// overwritten; each capture appends a new record.
type OddsQuote struct {
	GameID     string    `json:"game_id"`
	Book       string    `json:"book"`
	CapturedAt time.Time `json:"captured_at"`

	// SpreadHome is the home handicap as quoted (home favored by 2 => -2).
	SpreadHome      float64 `json:"spread_home"`
	SpreadPriceHome int     `json:"spread_price_home"` // American
	SpreadPriceAway int     `json:"spread_price_away"`

	Total           float64 `json:"total"`
	TotalPriceOver  int     `json:"total_price_over"`
	TotalPriceUnder int     `json:"total_price_under"`

	MoneylineHome int `json:"moneyline_home"`
	MoneylineAway int `json:"moneyline_away"`
}

// HomeMarketMargin converts the quoted home spread into the predicted-margin
// sign convention: positive means the market favors the home side.
func (q *OddsQuote) HomeMarketMargin() float64 {
	return -q.SpreadHome
}

// QuoteSeries is the append-only quote history for one game.
type QuoteSeries []OddsQuote

// sortedByCapture returns the series ordered by capture time ascending.
func (s QuoteSeries) sortedByCapture() QuoteSeries {
	out := make(QuoteSeries, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out
}

// Opening returns the earliest quote captured before kickoff, the
// "opening-equivalent" the core prices against.
func (s QuoteSeries) Opening(kickoff time.Time) (OddsQuote, bool) {
	for _, q := range s.sortedByCapture() {
		if q.CapturedAt.Before(kickoff) {
			return q, true
		}
	}
	return OddsQuote{}, false
}

// Latest returns the quote captured nearest but before kickoff.
func (s QuoteSeries) Latest(kickoff time.Time) (OddsQuote, bool) {
	var (
		best  OddsQuote
		found bool
	)
	for _, q := range s.sortedByCapture() {
		if q.CapturedAt.Before(kickoff) {
			best = q
			found = true
		}
	}
	return best, found
}

// Closing returns the quote nearest kickoff on either side, used for
// closing-line value once the market has closed.
func (s QuoteSeries) Closing(kickoff time.Time) (OddsQuote, bool) {
	var (
		best    OddsQuote
		bestGap time.Duration
		found   bool
	)
	for _, q := range s {
		gap := kickoff.Sub(q.CapturedAt)
		if gap < 0 {
			gap = -gap
		}
		if !found || gap < bestGap {
			best = q
			bestGap = gap
			found = true
		}
	}
	return best, found
}

// IsStale reports whether the quote is older than the freshness window at
// the given reference time. Stale quotes are a warning, not an error.
func (q *OddsQuote) IsStale(now time.Time, window time.Duration) bool {
	return now.Sub(q.CapturedAt) > window
}

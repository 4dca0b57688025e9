package identity

import (
	"time"

	"github.com/wagerlab/linehawk/pkg/market"
)

// ScheduleEntry is a raw schedule record as published by the schedule
// collaborator, team names still in the source vocabulary.
type ScheduleEntry struct {
	League  string        `json:"league"`
	Week    int           `json:"week"`
	RawHome string        `json:"home"`
	RawAway string        `json:"away"`
	Kickoff time.Time     `json:"kickoff"`
	Venue   *market.Venue `json:"venue,omitempty"`
}

// RawQuote is an odds capture before identity resolution.
type RawQuote struct {
	RawHome         string    `json:"home"`
	RawAway         string    `json:"away"`
	Book            string    `json:"book"`
	CapturedAt      time.Time `json:"captured_at"`
	SpreadHome      float64   `json:"spread_home"`
	SpreadPriceHome int       `json:"spread_price_home"`
	SpreadPriceAway int       `json:"spread_price_away"`
	Total           float64   `json:"total"`
	TotalPriceOver  int       `json:"total_price_over"`
	TotalPriceUnder int       `json:"total_price_under"`
	MoneylineHome   int       `json:"moneyline_home"`
	MoneylineAway   int       `json:"moneyline_away"`
}

// MatchResult is the outcome of reconciling a schedule against an odds
// feed. Nothing is silently dropped: games without odds and quotes without
// games are reported explicitly.
type MatchResult struct {
	Games  []market.Game
	Quotes map[string]market.QuoteSeries // keyed by game ID

	GamesWithoutOdds []market.Game
	OrphanQuotes     []RawQuote
	Unresolved       []Unmatched
}

// MatchRate returns the fraction of scheduled games that found at least
// one odds quote.
func (m *MatchResult) MatchRate() float64 {
	if len(m.Games) == 0 {
		return 0
	}
	return float64(len(m.Games)-len(m.GamesWithoutOdds)) / float64(len(m.Games))
}

// MatchGames resolves schedule and odds entries through the shared resolver
// and pairs them by game key. A republished matchup with a changed kickoff
// supersedes the earlier record rather than mutating it.
func MatchGames(r *Resolver, entries []ScheduleEntry, quotes []RawQuote) *MatchResult {
	res := &MatchResult{Quotes: make(map[string]market.QuoteSeries)}

	byID := make(map[string]int) // game ID -> index into res.Games
	for _, e := range entries {
		home, errH := r.Resolve(SourceSchedule, e.RawHome)
		away, errA := r.Resolve(SourceSchedule, e.RawAway)
		if errH != nil || errA != nil {
			continue // surfaced via resolver unmatched records
		}

		g := market.Game{
			ID:       GameKey(away.Key, home.Key),
			League:   e.League,
			Week:     e.Week,
			HomeKey:  home.Key,
			AwayKey:  away.Key,
			HomeName: home.DisplayName,
			AwayName: away.DisplayName,
			Kickoff:  e.Kickoff,
			Venue:    e.Venue,
		}

		if idx, ok := byID[g.ID]; ok {
			prior := res.Games[idx]
			if !prior.Kickoff.Equal(g.Kickoff) {
				old := prior.Kickoff
				g.PriorKickoff = &old
				res.Games[idx] = g
			}
			continue
		}
		byID[g.ID] = len(res.Games)
		res.Games = append(res.Games, g)
	}

	for _, q := range quotes {
		home, errH := r.Resolve(SourceOdds, q.RawHome)
		away, errA := r.Resolve(SourceOdds, q.RawAway)
		if errH != nil || errA != nil {
			res.OrphanQuotes = append(res.OrphanQuotes, q)
			continue
		}

		id := GameKey(away.Key, home.Key)
		if _, ok := byID[id]; !ok {
			res.OrphanQuotes = append(res.OrphanQuotes, q)
			continue
		}

		res.Quotes[id] = append(res.Quotes[id], market.OddsQuote{
			GameID:          id,
			Book:            q.Book,
			CapturedAt:      q.CapturedAt,
			SpreadHome:      q.SpreadHome,
			SpreadPriceHome: q.SpreadPriceHome,
			SpreadPriceAway: q.SpreadPriceAway,
			Total:           q.Total,
			TotalPriceOver:  q.TotalPriceOver,
			TotalPriceUnder: q.TotalPriceUnder,
			MoneylineHome:   q.MoneylineHome,
			MoneylineAway:   q.MoneylineAway,
		})
	}

	for _, g := range res.Games {
		if len(res.Quotes[g.ID]) == 0 {
			res.GamesWithoutOdds = append(res.GamesWithoutOdds, g)
		}
	}
	res.Unresolved = r.UnmatchedNames()

	return res
}

package engine

import (
	"github.com/wagerlab/linehawk/pkg/feeds"
	"github.com/wagerlab/linehawk/pkg/identity"
	"github.com/wagerlab/linehawk/pkg/market"
	"github.com/wagerlab/linehawk/pkg/signal"
)

// signalIndex holds the fetched adjustment evidence keyed for per-game
// lookup: forecasts by venue name, injuries and news by canonical team
// key, situational facts and splits by game key.
type signalIndex struct {
	forecasts map[string]signal.Forecast
	injuries  map[string][]signal.InjuryReport
	qbChanges map[string]signal.QBChange
	facts     map[string]feeds.GameFacts
	news      map[string][]signal.NewsItem
}

// indexSignals resolves raw feed payloads into the canonical key space.
// Rows whose team name fails resolution are dropped here; the resolver's
// unmatched report carries them into the run diagnostics.
func (e *Engine) indexSignals(r *identity.Resolver, snap *feeds.Snapshot) *signalIndex {
	idx := &signalIndex{
		forecasts: make(map[string]signal.Forecast),
		injuries:  make(map[string][]signal.InjuryReport),
		qbChanges: make(map[string]signal.QBChange),
		facts:     make(map[string]feeds.GameFacts),
		news:      make(map[string][]signal.NewsItem),
	}

	for _, vf := range snap.Forecasts {
		idx.forecasts[identity.Normalize(vf.VenueName)] = vf.Forecast
	}

	for _, inj := range snap.Injuries {
		team, err := r.Resolve(identity.SourceNews, inj.TeamName)
		if err != nil {
			continue
		}
		idx.injuries[team.Key] = append(idx.injuries[team.Key], signal.InjuryReport{
			TeamKey:  team.Key,
			Position: inj.Position,
			Status:   inj.Status,
			Starter:  inj.Starter,
			Player:   inj.Player,
		})
	}
	for _, qb := range snap.QBChanges {
		team, err := r.Resolve(identity.SourceNews, qb.TeamName)
		if err != nil {
			continue
		}
		idx.qbChanges[team.Key] = signal.QBChange{TeamKey: team.Key, Tier: qb.Tier}
	}

	for _, gf := range snap.Facts {
		away, errA := r.Resolve(identity.SourceSchedule, gf.AwayName)
		home, errH := r.Resolve(identity.SourceSchedule, gf.HomeName)
		if errA != nil || errH != nil {
			continue
		}
		idx.facts[identity.GameKey(away.Key, home.Key)] = gf
	}

	for _, item := range snap.News {
		team, err := r.Resolve(identity.SourceNews, item.TeamName)
		if err != nil {
			continue
		}
		idx.news[team.Key] = append(idx.news[team.Key], signal.NewsItem{
			TeamKey:    team.Key,
			Position:   item.Position,
			Text:       item.Text,
			Relevance:  item.Relevance,
			ObservedAt: item.ObservedAt,
		})
	}

	return idx
}

func (idx *signalIndex) forecastFor(g market.Game) *signal.Forecast {
	if g.Venue == nil {
		return nil
	}
	if f, ok := idx.forecasts[identity.Normalize(g.Venue.Name)]; ok {
		cp := f
		return &cp
	}
	return nil
}

func (idx *signalIndex) injuriesFor(g market.Game) *signal.InjuryInputs {
	reports := append([]signal.InjuryReport{}, idx.injuries[g.HomeKey]...)
	reports = append(reports, idx.injuries[g.AwayKey]...)

	var changes []signal.QBChange
	if qb, ok := idx.qbChanges[g.HomeKey]; ok {
		changes = append(changes, qb)
	}
	if qb, ok := idx.qbChanges[g.AwayKey]; ok {
		changes = append(changes, qb)
	}

	if len(reports) == 0 && len(changes) == 0 {
		return nil
	}
	return &signal.InjuryInputs{Reports: reports, QBChanges: changes}
}

func (idx *signalIndex) situationFor(g market.Game) *signal.SituationFacts {
	if gf, ok := idx.facts[g.ID]; ok {
		return gf.Situation
	}
	return nil
}

func (idx *signalIndex) splitFor(g market.Game) *signal.TicketSplit {
	if gf, ok := idx.facts[g.ID]; ok {
		return gf.Split
	}
	return nil
}

func (idx *signalIndex) newsFor(g market.Game) []signal.NewsItem {
	items := append([]signal.NewsItem{}, idx.news[g.HomeKey]...)
	return append(items, idx.news[g.AwayKey]...)
}

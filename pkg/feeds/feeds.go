// Package feeds defines the collaborator interfaces the engine pulls its
// inputs from, plus the concurrent fan-out that fetches them. Providers
// return records in each source's raw vocabulary; identity resolution
// happens in the engine, never here.
package feeds

import (
	"context"
	"errors"
	"time"

	"github.com/wagerlab/linehawk/pkg/identity"
	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/signal"
)

// ErrQuotaExhausted signals a provider's upstream rate limit. The engine
// treats it as "no additional signals this cycle", never as failure.
var ErrQuotaExhausted = errors.New("feeds: provider quota exhausted")

// RawRating is a power rating keyed by the ratings source's team name.
type RawRating struct {
	TeamName           string  `json:"team_name"`
	Week               int     `json:"week"`
	Value              float64 `json:"value"`
	StrengthOfSchedule float64 `json:"strength_of_schedule"`
}

// VenueForecast is a kickoff forecast keyed by venue name, the join key
// the weather source shares with the schedule.
type VenueForecast struct {
	VenueName string          `json:"venue_name"`
	Kickoff   time.Time       `json:"kickoff"`
	Forecast  signal.Forecast `json:"forecast"`
}

// RawInjury is an injury-report row in the source's vocabulary.
type RawInjury struct {
	TeamName string              `json:"team_name"`
	Position league.Position     `json:"position"`
	Status   signal.InjuryStatus `json:"status"`
	Starter  bool                `json:"starter"`
	Player   string              `json:"player,omitempty"`
}

// RawQBChange is a reported starting-quarterback change.
type RawQBChange struct {
	TeamName string        `json:"team_name"`
	Tier     league.QBTier `json:"tier"`
}

// GameFacts bundles per-game context from the situational source: rest,
// travel, stakes and the public ticket/money split. Teams are raw names
// in the schedule vocabulary.
type GameFacts struct {
	AwayName  string                 `json:"away_name"`
	HomeName  string                 `json:"home_name"`
	Situation *signal.SituationFacts `json:"situation,omitempty"`
	Split     *signal.TicketSplit    `json:"split,omitempty"`
}

// RawNews is a breaking post scored for relevance by the collaborator.
type RawNews struct {
	TeamName   string          `json:"team_name"`
	Position   league.Position `json:"position"`
	Text       string          `json:"text"`
	Relevance  float64         `json:"relevance"`
	ObservedAt time.Time       `json:"observed_at"`
}

// ScheduleProvider yields the week's schedule in the schedule vocabulary.
type ScheduleProvider interface {
	Schedule(ctx context.Context, lg league.League, week int) ([]identity.ScheduleEntry, error)
}

// OddsProvider yields captured quotes in the odds vocabulary.
type OddsProvider interface {
	Quotes(ctx context.Context, lg league.League, week int) ([]identity.RawQuote, error)
}

// RatingsProvider yields the week's power ratings.
type RatingsProvider interface {
	Ratings(ctx context.Context, lg league.League, week int) ([]RawRating, error)
}

// WeatherProvider yields kickoff forecasts keyed by venue.
type WeatherProvider interface {
	Forecasts(ctx context.Context, lg league.League, week int) ([]VenueForecast, error)
}

// InjuryProvider yields the injury report and QB changes.
type InjuryProvider interface {
	Injuries(ctx context.Context, lg league.League, week int) ([]RawInjury, []RawQBChange, error)
}

// ContextProvider yields per-game situational facts and ticket splits.
type ContextProvider interface {
	GameFacts(ctx context.Context, lg league.League, week int) ([]GameFacts, error)
}

// NewsProvider yields recent breaking posts. Implementations subject to
// an upstream quota return ErrQuotaExhausted once it is spent.
type NewsProvider interface {
	News(ctx context.Context, lg league.League) ([]RawNews, error)
}

package feeds

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wagerlab/linehawk/pkg/identity"
	"github.com/wagerlab/linehawk/pkg/league"
)

// Providers is the full collaborator set. Schedule and Ratings are
// required; every other slot may be nil and contributes nothing.
type Providers struct {
	Schedule ScheduleProvider
	Odds     OddsProvider
	Ratings  RatingsProvider
	Weather  WeatherProvider
	Injuries InjuryProvider
	Context  ContextProvider
	News     NewsProvider
}

// Snapshot is one cycle's worth of fetched inputs, still in raw
// per-source vocabularies.
type Snapshot struct {
	Schedule  []identity.ScheduleEntry
	Quotes    []identity.RawQuote
	Ratings   []RawRating
	Forecasts []VenueForecast
	Injuries  []RawInjury
	QBChanges []RawQBChange
	Facts     []GameFacts
	News      []RawNews

	// Warnings collects non-fatal provider failures for the run report.
	Warnings []string
}

// Gather fans the providers out concurrently and collects results. The
// fetches have no data dependency on each other, so they all start at
// once and a WaitGroup joins them.
//
// Failure policy follows the run-abort rule: a dead schedule or ratings
// provider is fatal, everything else degrades to an empty slot with a
// warning. A news provider returning ErrQuotaExhausted is the defined
// degraded mode, logged at info rather than warn.
func Gather(ctx context.Context, log *logrus.Logger, p Providers, lg league.League, week int) (*Snapshot, error) {
	if p.Schedule == nil {
		return nil, fmt.Errorf("feeds: no schedule provider configured")
	}
	if p.Ratings == nil {
		return nil, fmt.Errorf("feeds: no ratings provider configured")
	}
	if log == nil {
		log = logrus.New()
	}

	snap := &Snapshot{}
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		scheduleErr error
		ratingsErr  error
	)

	warn := func(source string, err error) {
		mu.Lock()
		defer mu.Unlock()
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: %v", source, err))
		log.WithError(err).WithField("source", source).Warn("provider failed, continuing without it")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		entries, err := p.Schedule.Schedule(ctx, lg, week)
		mu.Lock()
		defer mu.Unlock()
		snap.Schedule, scheduleErr = entries, err
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ratings, err := p.Ratings.Ratings(ctx, lg, week)
		mu.Lock()
		defer mu.Unlock()
		snap.Ratings, ratingsErr = ratings, err
	}()

	if p.Odds != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quotes, err := p.Odds.Quotes(ctx, lg, week)
			if err != nil {
				warn("odds", err)
				return
			}
			mu.Lock()
			snap.Quotes = quotes
			mu.Unlock()
		}()
	}

	if p.Weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			forecasts, err := p.Weather.Forecasts(ctx, lg, week)
			if err != nil {
				warn("weather", err)
				return
			}
			mu.Lock()
			snap.Forecasts = forecasts
			mu.Unlock()
		}()
	}

	if p.Injuries != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports, changes, err := p.Injuries.Injuries(ctx, lg, week)
			if err != nil {
				warn("injuries", err)
				return
			}
			mu.Lock()
			snap.Injuries, snap.QBChanges = reports, changes
			mu.Unlock()
		}()
	}

	if p.Context != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			facts, err := p.Context.GameFacts(ctx, lg, week)
			if err != nil {
				warn("context", err)
				return
			}
			mu.Lock()
			snap.Facts = facts
			mu.Unlock()
		}()
	}

	if p.News != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := p.News.News(ctx, lg)
			if errors.Is(err, ErrQuotaExhausted) {
				log.WithField("source", "news").Info("news quota exhausted, using cached signals only")
				mu.Lock()
				snap.News = items // cache may still supply non-expired items
				mu.Unlock()
				return
			}
			if err != nil {
				warn("news", err)
				return
			}
			mu.Lock()
			snap.News = items
			mu.Unlock()
		}()
	}

	wg.Wait()

	if scheduleErr != nil {
		return nil, fmt.Errorf("feeds: schedule: %w", scheduleErr)
	}
	if ratingsErr != nil {
		return nil, fmt.Errorf("feeds: ratings: %w", ratingsErr)
	}
	if len(snap.Schedule) == 0 {
		return nil, fmt.Errorf("feeds: schedule provider returned no games for %s week %d", lg, week)
	}
	if len(snap.Ratings) == 0 {
		return nil, fmt.Errorf("feeds: ratings provider returned no ratings for %s week %d", lg, week)
	}
	return snap, nil
}

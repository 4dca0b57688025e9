// Package engine composes one edge-computation run: fetch the feeds,
// resolve identities, load ratings, run the adjustment pipeline per game,
// compute and rank edges, and apply the exposure book. The engine is
// stateless between runs; everything it holds is configuration.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/wagerlab/linehawk/pkg/config"
	"github.com/wagerlab/linehawk/pkg/edge"
	"github.com/wagerlab/linehawk/pkg/feeds"
	"github.com/wagerlab/linehawk/pkg/identity"
	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/market"
	"github.com/wagerlab/linehawk/pkg/metrics"
	"github.com/wagerlab/linehawk/pkg/ratings"
	"github.com/wagerlab/linehawk/pkg/signal"
)

// Engine runs the pipeline for one league and week at a time.
type Engine struct {
	cfg       *config.Config
	providers feeds.Providers
	log       *logrus.Logger
	metrics   *metrics.PipelineMetrics // optional
	now       func() time.Time
}

// New wires an engine. Logger is required; metrics may be nil.
func New(cfg *config.Config, providers feeds.Providers, log *logrus.Logger, pm *metrics.PipelineMetrics) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{cfg: cfg, providers: providers, log: log, metrics: pm, now: time.Now}
}

// RunReport is the full outcome of one run: the ranked edges plus every
// diagnostic a silent failure could otherwise hide behind.
type RunReport struct {
	League league.League `json:"league"`
	Week   int           `json:"week"`

	Games            int                  `json:"games"`
	MatchRate        float64              `json:"match_rate"`
	GamesWithoutOdds []market.Game        `json:"games_without_odds,omitempty"`
	Unresolved       []identity.Unmatched `json:"unresolved,omitempty"`
	Warnings         []string             `json:"warnings,omitempty"`

	Edges []edge.Edge `json:"edges"`
}

// Run executes one edge-computation cycle. Per-game problems are contained
// to that game's edge; only missing schedule, missing ratings or a bad
// profile abort the run.
func (e *Engine) Run(ctx context.Context, lg league.League, week int) (*RunReport, error) {
	started := e.now()
	log := e.log.WithFields(logrus.Fields{"league": lg, "week": week})

	prof, err := e.cfg.Profile(lg)
	if err != nil {
		return nil, err
	}
	calc, err := edge.NewCalculator(prof, e.cfg.KellyFraction, e.cfg.MaxBetFraction)
	if err != nil {
		return nil, err
	}

	snap, err := feeds.Gather(ctx, e.log, e.providers, lg, week)
	if err != nil {
		e.recordRun(lg, "error", started)
		return nil, err
	}
	report := &RunReport{League: lg, Week: week, Warnings: snap.Warnings}

	resolver := e.buildResolver(lg, snap)
	store, ratingWarnings := e.loadRatings(resolver, snap.Ratings)
	report.Warnings = append(report.Warnings, ratingWarnings...)

	match := identity.MatchGames(resolver, snap.Schedule, snap.Quotes)
	report.Games = len(match.Games)
	report.MatchRate = match.MatchRate()
	report.GamesWithoutOdds = match.GamesWithoutOdds
	report.Unresolved = resolver.UnmatchedNames()

	if len(match.GamesWithoutOdds) > 0 {
		for _, g := range match.GamesWithoutOdds {
			log.WithField("game", g.ID).Warn("game present in schedule but has zero matching odds")
		}
	}
	for _, u := range report.Unresolved {
		log.WithFields(logrus.Fields{"source": u.Source, "raw_name": u.RawName}).
			Warn("unresolved team name")
	}
	if e.metrics != nil {
		attempts, misses := resolver.Stats()
		e.metrics.RecordMatch(string(lg), attempts, misses, report.MatchRate, len(match.GamesWithoutOdds))
	}

	inputs := e.indexSignals(resolver, snap)
	pipeline := e.buildPipeline()
	now := e.now()

	for _, game := range match.Games {
		ed, ok := e.computeGame(log, game, match.Quotes[game.ID], prof, calc, pipeline, store, inputs, now)
		if !ok {
			continue
		}
		report.Edges = append(report.Edges, ed)
	}

	book := edge.NewBook(e.exposureLimits())
	report.Edges = book.ApplyCard(edge.Rank(report.Edges))

	playable := len(edge.Playable(report.Edges))
	log.WithFields(logrus.Fields{
		"games":      report.Games,
		"match_rate": fmt.Sprintf("%.2f", report.MatchRate),
		"edges":      playable,
	}).Info("run complete")
	e.recordRun(lg, "ok", started)
	return report, nil
}

// computeGame produces one game's edge. A false return means the game is
// excluded: no rating lineage at all or no usable quote.
func (e *Engine) computeGame(
	log *logrus.Entry,
	game market.Game,
	series market.QuoteSeries,
	prof league.Profile,
	calc *edge.Calculator,
	pipeline *signal.Pipeline,
	store *ratings.Store,
	inputs *signalIndex,
	now time.Time,
) (edge.Edge, bool) {
	home, errH := store.Get(game.HomeKey, game.Week)
	away, errA := store.Get(game.AwayKey, game.Week)
	if errH != nil || errA != nil {
		log.WithField("game", game.ID).Warn("no power rating lineage, game excluded")
		return edge.Edge{}, false
	}
	if e.metrics != nil && (home.Stale || away.Stale) {
		e.metrics.StaleRatings.WithLabelValues(string(prof.League)).Inc()
	}

	quote, ok := series.Latest(game.Kickoff)
	if !ok {
		log.WithField("game", game.ID).Warn("no quote captured before kickoff, game excluded")
		return edge.Edge{}, false
	}
	stale := quote.IsStale(now, e.cfg.FreshnessWindow)
	if stale {
		log.WithFields(logrus.Fields{"game": game.ID, "captured_at": quote.CapturedAt}).
			Warn("quote older than freshness window")
		if e.metrics != nil {
			e.metrics.StaleQuotes.WithLabelValues(string(prof.League)).Inc()
		}
	}

	gctx := signal.GameContext{
		Game:           game,
		BaselineMargin: home.Value - away.Value + prof.HomeFieldPoints,
		Forecast:       inputs.forecastFor(game),
		Injuries:       inputs.injuriesFor(game),
		Situation:      inputs.situationFor(game),
		Split:          inputs.splitFor(game),
		News:           inputs.newsFor(game),
		Now:            now,
	}

	combined := pipeline.Run(gctx, prof)
	ed, err := calc.Compute(edge.Inputs{
		Game:       game,
		HomeRating: home,
		AwayRating: away,
		Quote:      quote,
		QuoteStale: stale,
		Adjust:     combined,
	})
	if err != nil {
		log.WithError(err).WithField("game", game.ID).Warn("edge computation failed, game excluded")
		return edge.Edge{}, false
	}
	if e.metrics != nil {
		edgeAbs := ed.EdgePoints
		if edgeAbs < 0 {
			edgeAbs = -edgeAbs
		}
		stake, _ := ed.Stake.Float64()
		e.metrics.RecordEdge(string(prof.League), string(ed.Tier), edgeAbs, stake)
	}
	return ed, true
}

// buildResolver seeds the identity resolver. The NFL ships a fixed roster
// and alias table; other leagues derive their canonical key space from the
// ratings feed, the one source guaranteed to cover every team.
func (e *Engine) buildResolver(lg league.League, snap *feeds.Snapshot) *identity.Resolver {
	if lg == league.LeagueNFL {
		r := identity.NewResolver(string(lg), identity.DefaultNFLRoster())
		identity.SeedNFLAliases(r)
		return r
	}

	seen := make(map[string]bool)
	var roster []identity.CanonicalTeam
	for _, rr := range snap.Ratings {
		key := strings.ReplaceAll(identity.Normalize(rr.TeamName), " ", "-")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		roster = append(roster, identity.CanonicalTeam{
			League:      string(lg),
			Key:         key,
			DisplayName: rr.TeamName,
		})
	}
	return identity.NewResolver(string(lg), roster)
}

// loadRatings resolves the ratings feed into the store. Unresolvable rows
// become warnings; their teams will be excluded at lookup time.
func (e *Engine) loadRatings(r *identity.Resolver, raw []feeds.RawRating) (*ratings.Store, []string) {
	store := ratings.NewStore()
	var warnings []string
	batch := make([]ratings.PowerRating, 0, len(raw))
	for _, rr := range raw {
		team, err := r.Resolve(identity.SourceRatings, rr.TeamName)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ratings: unresolved team %q", rr.TeamName))
			continue
		}
		batch = append(batch, ratings.PowerRating{
			CanonicalKey:       team.Key,
			Week:               rr.Week,
			Value:              rr.Value,
			StrengthOfSchedule: rr.StrengthOfSchedule,
		})
	}
	store.Load(batch)
	return store, warnings
}

// buildPipeline wraps the stages with latency instrumentation when metrics
// are wired.
func (e *Engine) buildPipeline() *signal.Pipeline {
	if e.metrics == nil {
		return signal.DefaultPipeline()
	}
	stages := []signal.Stage{
		signal.WeatherStage{},
		signal.InjuryStage{},
		signal.SituationalStage{},
		signal.SharpMoneyStage{},
		signal.NewsStage{},
	}
	timed := make([]signal.Stage, len(stages))
	for i, s := range stages {
		timed[i] = timedStage{inner: s, metrics: e.metrics}
	}
	return signal.NewPipeline(timed...)
}

func (e *Engine) exposureLimits() *edge.ExposureLimits {
	limits := edge.DefaultExposureLimits()
	if e.cfg.MaxWeeklyExposure > 0 {
		limits.MaxWeeklyExposure = decimal.NewFromFloat(e.cfg.MaxWeeklyExposure)
	}
	if e.cfg.MaxGameExposure > 0 {
		limits.MaxGameExposure = decimal.NewFromFloat(e.cfg.MaxGameExposure)
	}
	if e.cfg.MaxWeeklyPlays > 0 {
		limits.MaxPlays = e.cfg.MaxWeeklyPlays
	}
	return limits
}

func (e *Engine) recordRun(lg league.League, status string, started time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRun(string(lg), status, e.now().Sub(started).Seconds())
}

// timedStage decorates a stage with a latency histogram.
type timedStage struct {
	inner   signal.Stage
	metrics *metrics.PipelineMetrics
}

func (t timedStage) Kind() signal.Kind { return t.inner.Kind() }

func (t timedStage) Apply(ctx signal.GameContext, prof league.Profile) signal.Result {
	start := time.Now()
	res := t.inner.Apply(ctx, prof)
	t.metrics.StageLatency.WithLabelValues(string(t.inner.Kind())).Observe(time.Since(start).Seconds())
	return res
}

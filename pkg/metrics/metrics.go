// Package metrics provides Prometheus metrics for the edge pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics collects and exposes pipeline Prometheus metrics on a
// private registry.
type PipelineMetrics struct {
	registry *prometheus.Registry

	// Identity metrics
	ResolveAttempts  *prometheus.CounterVec
	ResolveMisses    *prometheus.CounterVec
	MatchRate        *prometheus.GaugeVec
	GamesWithoutOdds *prometheus.GaugeVec

	// Pipeline metrics
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	StageLatency *prometheus.HistogramVec
	StaleRatings *prometheus.CounterVec
	StaleQuotes  *prometheus.CounterVec

	// Edge metrics
	EdgesTotal    *prometheus.CounterVec
	EdgePoints    *prometheus.HistogramVec
	StakeFraction *prometheus.HistogramVec

	// CLV metrics
	BetsTotal *prometheus.CounterVec
	ClvPoints *prometheus.HistogramVec
	ClvCents  *prometheus.HistogramVec
}

// NewPipelineMetrics creates the collector with its own registry.
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	pm := &PipelineMetrics{
		registry: registry,

		ResolveAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_resolve_attempts_total",
				Help: "Raw team names run through the identity resolver",
			},
			[]string{"league"},
		),
		ResolveMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_resolve_misses_total",
				Help: "Raw team names with no canonical mapping",
			},
			[]string{"league"},
		),
		MatchRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "linehawk_match_rate",
				Help: "Fraction of scheduled games matched to at least one quote",
			},
			[]string{"league"},
		),
		GamesWithoutOdds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "linehawk_games_without_odds",
				Help: "Scheduled games with zero matching quotes in the last run",
			},
			[]string{"league"},
		),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_runs_total",
				Help: "Edge computation runs",
			},
			[]string{"league", "status"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linehawk_run_duration_seconds",
				Help:    "End-to-end duration of one edge computation run",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"league"},
		),
		StageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linehawk_stage_latency_seconds",
				Help:    "Per-stage adjustment latency",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
			[]string{"stage"},
		),
		StaleRatings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_stale_ratings_total",
				Help: "Rating lookups served by prior-week fallback",
			},
			[]string{"league"},
		),
		StaleQuotes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_stale_quotes_total",
				Help: "Edges computed from quotes older than the freshness window",
			},
			[]string{"league"},
		),

		EdgesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_edges_total",
				Help: "Edges produced, by confidence tier",
			},
			[]string{"league", "tier"},
		),
		EdgePoints: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linehawk_edge_points",
				Help:    "Absolute edge magnitude in points",
				Buckets: prometheus.LinearBuckets(0, 0.5, 20), // 0 to 10 points
			},
			[]string{"league"},
		),
		StakeFraction: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linehawk_stake_fraction",
				Help:    "Recommended stake as a bankroll fraction",
				Buckets: prometheus.LinearBuckets(0, 0.005, 11), // 0 to 5%
			},
			[]string{"league", "tier"},
		),

		BetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linehawk_bets_total",
				Help: "Bet records written, by settlement result",
			},
			[]string{"league", "result"},
		),
		ClvPoints: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linehawk_clv_points",
				Help:    "Closing-line value in points per graded bet",
				Buckets: prometheus.LinearBuckets(-5, 0.5, 21),
			},
			[]string{"league"},
		),
		ClvCents: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linehawk_clv_cents",
				Help:    "Closing-line value in implied-probability cents per graded bet",
				Buckets: prometheus.LinearBuckets(-10, 1, 21),
			},
			[]string{"league"},
		),
	}

	pm.registerAll()
	return pm
}

func (pm *PipelineMetrics) registerAll() {
	pm.registry.MustRegister(
		pm.ResolveAttempts,
		pm.ResolveMisses,
		pm.MatchRate,
		pm.GamesWithoutOdds,
		pm.RunsTotal,
		pm.RunDuration,
		pm.StageLatency,
		pm.StaleRatings,
		pm.StaleQuotes,
		pm.EdgesTotal,
		pm.EdgePoints,
		pm.StakeFraction,
		pm.BetsTotal,
		pm.ClvPoints,
		pm.ClvCents,
	)
}

// Registry returns the prometheus registry for exposition.
func (pm *PipelineMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// --- Helper methods for recording metrics ---

// RecordMatch records the identity-matching outcome of one run.
func (pm *PipelineMetrics) RecordMatch(league string, attempts, misses int, matchRate float64, withoutOdds int) {
	pm.ResolveAttempts.WithLabelValues(league).Add(float64(attempts))
	pm.ResolveMisses.WithLabelValues(league).Add(float64(misses))
	pm.MatchRate.WithLabelValues(league).Set(matchRate)
	pm.GamesWithoutOdds.WithLabelValues(league).Set(float64(withoutOdds))
}

// RecordRun records a completed run.
func (pm *PipelineMetrics) RecordRun(league, status string, durationSec float64) {
	pm.RunsTotal.WithLabelValues(league, status).Inc()
	if durationSec > 0 {
		pm.RunDuration.WithLabelValues(league).Observe(durationSec)
	}
}

// RecordEdge records one computed edge.
func (pm *PipelineMetrics) RecordEdge(league, tier string, edgeAbs, stakeFraction float64) {
	pm.EdgesTotal.WithLabelValues(league, tier).Inc()
	pm.EdgePoints.WithLabelValues(league).Observe(edgeAbs)
	if stakeFraction > 0 {
		pm.StakeFraction.WithLabelValues(league, tier).Observe(stakeFraction)
	}
}

// RecordGradedBet records a bet graded against the close.
func (pm *PipelineMetrics) RecordGradedBet(league string, clvPoints, clvCents float64) {
	pm.ClvPoints.WithLabelValues(league).Observe(clvPoints)
	pm.ClvCents.WithLabelValues(league).Observe(clvCents)
}

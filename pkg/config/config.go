// Package config loads runtime configuration from linehawk.yaml plus
// LINEHAWK_* environment variables, layered over defaults. League model
// parameters live in their own section and override the built-in
// profiles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wagerlab/linehawk/pkg/league"
)

// Config is the full runtime configuration.
type Config struct {
	// Bankroll and staking
	KellyFraction     float64 `mapstructure:"kelly_fraction"`
	MaxBetFraction    float64 `mapstructure:"max_bet_fraction"`
	MaxWeeklyExposure float64 `mapstructure:"max_weekly_exposure"`
	MaxGameExposure   float64 `mapstructure:"max_game_exposure"`
	MaxWeeklyPlays    int     `mapstructure:"max_weekly_plays"`

	// Data handling
	SnapshotDir      string        `mapstructure:"snapshot_dir"`
	FreshnessWindow  time.Duration `mapstructure:"freshness_window"`
	NewsCacheTTL     time.Duration `mapstructure:"news_cache_ttl"`
	NewsFetchPerHour int           `mapstructure:"news_fetch_per_hour"`

	// Persistence
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// Observability
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	// Per-league model overrides, keyed by league code.
	Profiles map[string]league.Profile `mapstructure:"profiles"`
}

// Load reads linehawk.yaml from the given path (or the working directory
// when empty) plus the environment, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("linehawk")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("LINEHAWK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file means defaults plus environment; any
		// other read failure is a real configuration error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kelly_fraction", 0.25)
	v.SetDefault("max_bet_fraction", 0.02)
	v.SetDefault("max_weekly_exposure", 0.15)
	v.SetDefault("max_game_exposure", 0.05)
	v.SetDefault("max_weekly_plays", 12)
	v.SetDefault("snapshot_dir", "./snapshots")
	v.SetDefault("freshness_window", "6h")
	v.SetDefault("news_cache_ttl", "24h")
	v.SetDefault("news_fetch_per_hour", 12)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.KellyFraction <= 0 || c.KellyFraction > 1 {
		return fmt.Errorf("config: kelly_fraction %.3f out of (0,1]", c.KellyFraction)
	}
	if c.MaxBetFraction <= 0 || c.MaxBetFraction > 1 {
		return fmt.Errorf("config: max_bet_fraction %.3f out of (0,1]", c.MaxBetFraction)
	}
	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("config: freshness_window must be positive")
	}
	if c.NewsFetchPerHour <= 0 {
		return fmt.Errorf("config: news_fetch_per_hour must be positive")
	}
	return nil
}

// Profile returns the model profile for a league: the built-in default
// overlaid with any configured override. Unknown leagues are an error —
// the profile tables are the model, not optional tuning.
func (c *Config) Profile(lg league.League) (league.Profile, error) {
	prof, ok := league.Lookup(league.DefaultProfiles(), string(lg))
	if !ok {
		return league.Profile{}, fmt.Errorf("config: unknown league %q", lg)
	}
	if override, ok := c.Profiles[string(lg)]; ok {
		prof = mergeProfile(prof, override)
	}
	return prof, nil
}

// mergeProfile overlays non-zero override fields on the default profile.
// Slice and map fields replace wholesale when set; partial table edits are
// not supported, a table is overridden as a unit or not at all.
func mergeProfile(base, o league.Profile) league.Profile {
	if o.HomeFieldPoints != 0 {
		base.HomeFieldPoints = o.HomeFieldPoints
	}
	if o.MinEdgePoints != 0 {
		base.MinEdgePoints = o.MinEdgePoints
	}
	if len(o.PositionValues) > 0 {
		base.PositionValues = o.PositionValues
	}
	if len(o.QBTierDrop) > 0 {
		base.QBTierDrop = o.QBTierDrop
	}
	if o.PositionCrisisCount != 0 {
		base.PositionCrisisCount = o.PositionCrisisCount
	}
	if o.PositionCrisisPenalty != 0 {
		base.PositionCrisisPenalty = o.PositionCrisisPenalty
	}
	if o.RestDayPenalty != 0 {
		base.RestDayPenalty = o.RestDayPenalty
	}
	if o.RestDayBaseline != 0 {
		base.RestDayBaseline = o.RestDayBaseline
	}
	if o.TravelThreshold != 0 {
		base.TravelThreshold = o.TravelThreshold
	}
	if o.TravelPenaltyPer != 0 {
		base.TravelPenaltyPer = o.TravelPenaltyPer
	}
	if o.EliminationBonus != 0 {
		base.EliminationBonus = o.EliminationBonus
	}
	if o.SituationalCap != 0 {
		base.SituationalCap = o.SituationalCap
	}
	if o.SharpDivergenceMin != 0 {
		base.SharpDivergenceMin = o.SharpDivergenceMin
	}
	if len(o.SharpTiers) > 0 {
		base.SharpTiers = o.SharpTiers
	}
	if o.NewsHalfLife != 0 {
		base.NewsHalfLife = o.NewsHalfLife
	}
	if o.NewsMinRelevance != 0 {
		base.NewsMinRelevance = o.NewsMinRelevance
	}
	if o.NewsMaxAge != 0 {
		base.NewsMaxAge = o.NewsMaxAge
	}
	if len(o.TierBands) > 0 {
		base.TierBands = o.TierBands
	}
	return base
}

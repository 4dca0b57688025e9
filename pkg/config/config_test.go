package config

import (
	"strings"
	"testing"
	"time"

	"github.com/wagerlab/linehawk/pkg/league"
)

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(t.TempDir()) // no linehawk.yaml present
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := defaultConfig(t)
	if cfg.KellyFraction != 0.25 {
		t.Errorf("KellyFraction = %.3f, want 0.25", cfg.KellyFraction)
	}
	if cfg.MaxBetFraction != 0.02 {
		t.Errorf("MaxBetFraction = %.3f, want 0.02", cfg.MaxBetFraction)
	}
	if cfg.MaxWeeklyPlays != 12 {
		t.Errorf("MaxWeeklyPlays = %d, want 12", cfg.MaxWeeklyPlays)
	}
	if cfg.FreshnessWindow != 6*time.Hour {
		t.Errorf("FreshnessWindow = %s, want 6h", cfg.FreshnessWindow)
	}
	if cfg.NewsCacheTTL != 24*time.Hour {
		t.Errorf("NewsCacheTTL = %s, want 24h", cfg.NewsCacheTTL)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LINEHAWK_KELLY_FRACTION", "0.5")
	t.Setenv("LINEHAWK_MAX_WEEKLY_PLAYS", "6")
	cfg := defaultConfig(t)
	if cfg.KellyFraction != 0.5 {
		t.Errorf("KellyFraction = %.3f, want env override 0.5", cfg.KellyFraction)
	}
	if cfg.MaxWeeklyPlays != 6 {
		t.Errorf("MaxWeeklyPlays = %d, want env override 6", cfg.MaxWeeklyPlays)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"kelly fraction zero", func(c *Config) { c.KellyFraction = 0 }, "kelly_fraction"},
		{"kelly fraction above one", func(c *Config) { c.KellyFraction = 1.5 }, "kelly_fraction"},
		{"bet fraction zero", func(c *Config) { c.MaxBetFraction = 0 }, "max_bet_fraction"},
		{"freshness window zero", func(c *Config) { c.FreshnessWindow = 0 }, "freshness_window"},
		{"news budget zero", func(c *Config) { c.NewsFetchPerHour = 0 }, "news_fetch_per_hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error naming %s", err, tt.want)
			}
		})
	}
}

func TestProfile_DefaultAndOverride(t *testing.T) {
	cfg := defaultConfig(t)

	prof, err := cfg.Profile("nfl")
	if err != nil {
		t.Fatal(err)
	}
	if prof.HomeFieldPoints != 2.0 {
		t.Errorf("default NFL HFA = %.1f, want 2.0", prof.HomeFieldPoints)
	}

	if _, err := cfg.Profile("xfl"); err == nil {
		t.Error("unknown league must be an error")
	}
}

func TestProfile_MergeOverlaysNonZeroFields(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Profiles = map[string]league.Profile{
		"nfl": {
			HomeFieldPoints: 1.5,
			SharpTiers: []league.SharpTier{
				{MinDivergence: 15, Shift: 0.25, Label: "strong"},
			},
		},
	}

	prof, err := cfg.Profile("nfl")
	if err != nil {
		t.Fatal(err)
	}
	if prof.HomeFieldPoints != 1.5 {
		t.Errorf("HomeFieldPoints = %.1f, want override 1.5", prof.HomeFieldPoints)
	}
	// Tables replace wholesale when overridden.
	if len(prof.SharpTiers) != 1 || prof.SharpTiers[0].Shift != 0.25 {
		t.Errorf("SharpTiers = %+v, want the single override tier", prof.SharpTiers)
	}
	// Untouched fields keep their defaults.
	if prof.MinEdgePoints != 1.5 {
		t.Errorf("MinEdgePoints = %.1f, want default 1.5", prof.MinEdgePoints)
	}
	if len(prof.TierBands) == 0 {
		t.Error("TierBands must keep the default table")
	}
}

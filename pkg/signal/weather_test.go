package signal

import (
	"math"
	"testing"

	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/market"
)

func nflProfile() league.Profile {
	return league.DefaultProfiles()[league.LeagueNFL]
}

func outdoorGame() market.Game {
	return market.Game{
		ID:      "green-bay|chicago",
		HomeKey: "chicago",
		AwayKey: "green-bay",
		Venue:   &market.Venue{Name: "Soldier Field", Roof: market.RoofOpen},
	}
}

func TestWeatherStage_DomedVenueWinsOverForecast(t *testing.T) {
	// A freezing forecast at a covered venue must produce zero delta: the
	// venue attribute decides, never the raw temperature.
	g := outdoorGame()
	g.Venue = &market.Venue{Name: "Ford Field", Roof: market.RoofDome}

	res := WeatherStage{}.Apply(GameContext{
		Game:     g,
		Forecast: &Forecast{TempF: 5, WindMPH: 30, PrecipInches: 0.5},
	}, nflProfile())

	if !res.Applied {
		t.Fatal("covered venue should be an applied zero, not a missing input")
	}
	if res.PointDelta != 0 || res.TotalDelta != 0 {
		t.Errorf("deltas = %.2f/%.2f, want 0/0", res.PointDelta, res.TotalDelta)
	}
}

func TestWeatherStage_MissingForecastIsNeutral(t *testing.T) {
	res := WeatherStage{}.Apply(GameContext{Game: outdoorGame()}, nflProfile())
	if res.Applied {
		t.Error("no forecast should be the neutral no-op")
	}
}

func TestWeatherStage_Buckets(t *testing.T) {
	tests := []struct {
		name      string
		forecast  Forecast
		wantTotal float64
	}{
		{"mild day", Forecast{TempF: 55, WindMPH: 5}, 0},
		{"sub-freezing", Forecast{TempF: 28, WindMPH: 5}, -1.5},
		{"extreme cold", Forecast{TempF: 4, WindMPH: 5}, -4.5},
		{"high wind", Forecast{TempF: 55, WindMPH: 21}, -4.0},
		{"severe wind", Forecast{TempF: 55, WindMPH: 28}, -5.5},
		{"heavy precip", Forecast{TempF: 55, WindMPH: 5, PrecipInches: 0.4}, -3.5},
		{"cold windy wet", Forecast{TempF: 15, WindMPH: 25, PrecipInches: 0.2}, -3.0 - 5.5 - 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := WeatherStage{}.Apply(GameContext{
				Game:     outdoorGame(),
				Forecast: &tt.forecast,
			}, nflProfile())
			if math.Abs(res.TotalDelta-tt.wantTotal) > 1e-9 {
				t.Errorf("TotalDelta = %.2f, want %.2f", res.TotalDelta, tt.wantTotal)
			}
		})
	}
}

func TestWeatherStage_CompressesMarginTowardZero(t *testing.T) {
	forecast := Forecast{TempF: 15, WindMPH: 5}

	// Home favorite: spread delta must be negative, shrinking the margin.
	res := WeatherStage{}.Apply(GameContext{
		Game:           outdoorGame(),
		BaselineMargin: 6,
		Forecast:       &forecast,
	}, nflProfile())
	if res.PointDelta >= 0 {
		t.Errorf("PointDelta = %.2f, want negative for a home favorite", res.PointDelta)
	}

	// Away favorite: delta flips positive.
	res = WeatherStage{}.Apply(GameContext{
		Game:           outdoorGame(),
		BaselineMargin: -6,
		Forecast:       &forecast,
	}, nflProfile())
	if res.PointDelta <= 0 {
		t.Errorf("PointDelta = %.2f, want positive for an away favorite", res.PointDelta)
	}

	// Compression never crosses zero: a tiny margin is fully eaten, not
	// reversed.
	res = WeatherStage{}.Apply(GameContext{
		Game:           outdoorGame(),
		BaselineMargin: 0.3,
		Forecast:       &forecast,
	}, nflProfile())
	if math.Abs(res.PointDelta) > 0.3+1e-9 {
		t.Errorf("PointDelta = %.2f overshoots the %.1f margin", res.PointDelta, 0.3)
	}
}

package clv

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/wagerlab/linehawk/pkg/edge"
	"github.com/wagerlab/linehawk/pkg/league"
	"github.com/wagerlab/linehawk/pkg/metrics"
)

func playableEdge(gameID string, side edge.Side) *edge.Edge {
	return &edge.Edge{
		GameID: gameID,
		League: "nfl",
		Week:   14,
		Side:   side,
		Tier:   league.TierModerate,
		Price:  -110,
		Stake:  decimal.NewFromFloat(0.02),
	}
}

func TestPointsCLV_SignRoundTrip(t *testing.T) {
	// Lines are home spreads as quoted. A bet taken at a better number
	// than the close is positive CLV regardless of which side was bet.
	tests := []struct {
		name      string
		side      edge.Side
		betLine   float64
		closeLine float64
		want      float64
	}{
		{"home bet, line moved toward home", edge.SideHome, -2, -4, 2},
		{"home bet, line moved away", edge.SideHome, -4, -2, -2},
		{"away bet, line moved toward away", edge.SideAway, -4, -2, 2},
		{"away bet, line moved against", edge.SideAway, -2, -4, -2},
		{"no movement", edge.SideHome, -3, -3, 0},
		{"underdog home bet improves", edge.SideHome, 3.5, 2.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointsCLV(tt.side, tt.betLine, tt.closeLine)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PointsCLV(%s, %.1f, %.1f) = %.1f, want %.1f",
					tt.side, tt.betLine, tt.closeLine, got, tt.want)
			}
		})
	}
}

func TestPointsCLV_MirrorSymmetry(t *testing.T) {
	// The same line movement scores opposite for opposite sides.
	home := PointsCLV(edge.SideHome, -2, -4)
	away := PointsCLV(edge.SideAway, -2, -4)
	if home != -away {
		t.Errorf("home %.1f and away %.1f should mirror", home, away)
	}
}

func TestCentsCLV(t *testing.T) {
	// Bet at -105, closed at -120: the close charges more for the same
	// position, so the bet beat it.
	cents, err := CentsCLV(-105, -120)
	if err != nil {
		t.Fatal(err)
	}
	if cents <= 0 {
		t.Errorf("CentsCLV(-105, -120) = %.2f, want positive", cents)
	}

	cents, err = CentsCLV(-120, -105)
	if err != nil {
		t.Fatal(err)
	}
	if cents >= 0 {
		t.Errorf("CentsCLV(-120, -105) = %.2f, want negative", cents)
	}
}

func TestBetRecord_GradeOnce(t *testing.T) {
	rec, err := NewBetRecord(playableEdge("green-bay|chicago", edge.SideHome), -2, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Result != ResultPending {
		t.Errorf("new record result = %s, want pending", rec.Result)
	}

	if err := rec.Grade(-3.5, -115, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !rec.Graded {
		t.Error("record should be graded")
	}
	if math.Abs(rec.ClvPoints-1.5) > 1e-9 {
		t.Errorf("ClvPoints = %.2f, want 1.5", rec.ClvPoints)
	}

	// The close is a single fact.
	if err := rec.Grade(-3.5, -115, time.Now()); err == nil {
		t.Error("second grade must fail")
	}
}

func TestNewBetRecord_RejectsNoPlay(t *testing.T) {
	e := playableEdge("a|b", edge.SideNone)
	e.Tier = league.TierNoPlay
	if _, err := NewBetRecord(e, -2, time.Now()); err == nil {
		t.Error("no-play edge must not become a bet record")
	}
}

func TestAggregate(t *testing.T) {
	now := time.Now()
	mk := func(side edge.Side, betLine, closeLine float64, res Result) *BetRecord {
		rec, err := NewBetRecord(playableEdge("a|b", side), betLine, now)
		if err != nil {
			t.Fatal(err)
		}
		if err := rec.Grade(closeLine, -110, now); err != nil {
			t.Fatal(err)
		}
		if err := rec.Settle(res); err != nil {
			t.Fatal(err)
		}
		return rec
	}

	recs := []*BetRecord{
		mk(edge.SideHome, -2, -4, ResultWin),  // +2 points
		mk(edge.SideHome, -4, -2, ResultLoss), // -2 points
		mk(edge.SideAway, -4, -2, ResultWin),  // +2 points
	}
	pending, err := NewBetRecord(playableEdge("c|d", edge.SideHome), -1, now)
	if err != nil {
		t.Fatal(err)
	}
	recs = append(recs, pending)

	agg := Aggregate(recs)
	if agg.Bets != 4 || agg.Graded != 3 {
		t.Errorf("Bets/Graded = %d/%d, want 4/3", agg.Bets, agg.Graded)
	}
	if agg.BeatClose != 2 {
		t.Errorf("BeatClose = %d, want 2", agg.BeatClose)
	}
	if math.Abs(agg.BeatRate-2.0/3.0) > 1e-9 {
		t.Errorf("BeatRate = %.3f, want 0.667", agg.BeatRate)
	}
	if math.Abs(agg.MeanPoints-2.0/3.0) > 1e-9 {
		t.Errorf("MeanPoints = %.3f, want 0.667", agg.MeanPoints)
	}
	if agg.Wins != 2 || agg.Losses != 1 {
		t.Errorf("Wins/Losses = %d/%d, want 2/1", agg.Wins, agg.Losses)
	}
}

func TestMemoryStore_TwoPhase(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rec, err := NewBetRecord(playableEdge("green-bay|chicago", edge.SideHome), -2, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, rec); err == nil {
		t.Error("duplicate insert must fail")
	}

	ungraded, err := store.Ungraded(ctx, "nfl")
	if err != nil {
		t.Fatal(err)
	}
	if len(ungraded) != 1 {
		t.Fatalf("Ungraded = %d, want 1", len(ungraded))
	}

	if err := store.Grade(ctx, rec.ID, -3, -115, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := store.Grade(ctx, rec.ID, -3, -115, time.Now()); err == nil {
		t.Error("second grade must fail")
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Graded || got.ClvPoints != 1 {
		t.Errorf("graded record = %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestTracker_GradeClosings(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryStore(), nil, nil)
	now := time.Now()

	a, err := tracker.Commit(ctx, playableEdge("green-bay|chicago", edge.SideHome), -2, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.Commit(ctx, playableEdge("dallas|philadelphia", edge.SideAway), 3, now); err != nil {
		t.Fatal(err)
	}

	graded, err := tracker.GradeClosings(ctx, "nfl", map[string]Closing{
		"green-bay|chicago": {LineHome: -4, Price: -120, ClosedAt: now.Add(time.Hour)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if graded != 1 {
		t.Errorf("graded = %d, want 1 (no closing for the other game)", graded)
	}

	recs, agg, err := tracker.Report(ctx, "nfl", 14)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || agg.Graded != 1 {
		t.Errorf("report = %d records, %d graded; want 2/1", len(recs), agg.Graded)
	}

	rec, err := tracker.store.Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ClvPoints != 2 {
		t.Errorf("ClvPoints = %.1f, want 2", rec.ClvPoints)
	}
}

func TestTracker_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	pm := metrics.NewPipelineMetrics()
	tracker := NewTracker(NewMemoryStore(), nil, pm)
	now := time.Now()

	rec, err := tracker.Commit(ctx, playableEdge("green-bay|chicago", edge.SideHome), -2, now)
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(pm.BetsTotal.WithLabelValues("nfl", "pending")); got != 1 {
		t.Errorf("pending bets counter = %.0f, want 1", got)
	}

	if _, err := tracker.GradeClosings(ctx, "nfl", map[string]Closing{
		"green-bay|chicago": {LineHome: -4, Price: -120, ClosedAt: now.Add(time.Hour)},
	}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.CollectAndCount(pm.ClvPoints); got == 0 {
		t.Error("graded bet should observe the CLV points histogram")
	}

	if err := tracker.Settle(ctx, rec.ID, ResultWin); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(pm.BetsTotal.WithLabelValues("nfl", "win")); got != 1 {
		t.Errorf("win bets counter = %.0f, want 1", got)
	}
}

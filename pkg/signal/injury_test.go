package signal

import (
	"math"
	"testing"

	"github.com/wagerlab/linehawk/pkg/league"
)

func TestInjuryStage_NoInputIsNeutral(t *testing.T) {
	res := InjuryStage{}.Apply(GameContext{Game: outdoorGame()}, nflProfile())
	if res.Applied {
		t.Error("no injury input should be the neutral no-op")
	}
}

func TestInjuryStage_StarterOutFullValue(t *testing.T) {
	prof := nflProfile()

	// Starting QB ruled out: full tabled position value against his team.
	res := InjuryStage{}.Apply(GameContext{
		Game: outdoorGame(),
		Injuries: &InjuryInputs{Reports: []InjuryReport{
			{TeamKey: "chicago", Position: league.PosQB, Status: StatusOut, Starter: true},
		}},
	}, prof)

	want := -prof.PositionValues[league.PosQB] // home team, full severity
	if math.Abs(res.PointDelta-want) > 1e-9 {
		t.Errorf("PointDelta = %.2f, want %.2f", res.PointDelta, want)
	}
}

func TestInjuryStage_SignConvention(t *testing.T) {
	prof := nflProfile()
	report := func(team string) *InjuryInputs {
		return &InjuryInputs{Reports: []InjuryReport{
			{TeamKey: team, Position: league.PosWR, Status: StatusOut, Starter: true},
		}}
	}

	home := InjuryStage{}.Apply(GameContext{Game: outdoorGame(), Injuries: report("chicago")}, prof)
	away := InjuryStage{}.Apply(GameContext{Game: outdoorGame(), Injuries: report("green-bay")}, prof)

	if home.PointDelta >= 0 {
		t.Errorf("home injury delta = %.2f, want negative", home.PointDelta)
	}
	if away.PointDelta <= 0 {
		t.Errorf("away injury delta = %.2f, want positive", away.PointDelta)
	}
	if math.Abs(home.PointDelta+away.PointDelta) > 1e-9 {
		t.Errorf("mirror injuries should cancel: %.2f vs %.2f", home.PointDelta, away.PointDelta)
	}
}

func TestInjuryStage_CapacityAndDepth(t *testing.T) {
	prof := nflProfile()
	wr := prof.PositionValues[league.PosWR]

	tests := []struct {
		name    string
		status  InjuryStatus
		starter bool
		want    float64
	}{
		{"questionable starter", StatusQuestionable, true, -wr * 0.40},
		{"limited starter", StatusLimited, true, -wr * 0.30},
		{"probable starter", StatusProbable, true, -wr * 0.15},
		{"out backup", StatusOut, false, -wr * 1.0 * 0.30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := InjuryStage{}.Apply(GameContext{
				Game: outdoorGame(),
				Injuries: &InjuryInputs{Reports: []InjuryReport{
					{TeamKey: "chicago", Position: league.PosWR, Status: tt.status, Starter: tt.starter},
				}},
			}, prof)
			if math.Abs(res.PointDelta-tt.want) > 1e-9 {
				t.Errorf("PointDelta = %.3f, want %.3f", res.PointDelta, tt.want)
			}
		})
	}
}

func TestInjuryStage_PositionGroupCrisis(t *testing.T) {
	prof := nflProfile()

	reports := make([]InjuryReport, 0, prof.PositionCrisisCount)
	for i := 0; i < prof.PositionCrisisCount; i++ {
		reports = append(reports, InjuryReport{
			TeamKey: "chicago", Position: league.PosOL, Status: StatusOut, Starter: true,
		})
	}

	res := InjuryStage{}.Apply(GameContext{
		Game:     outdoorGame(),
		Injuries: &InjuryInputs{Reports: reports},
	}, prof)

	linear := -prof.PositionValues[league.PosOL] * float64(prof.PositionCrisisCount)
	want := linear - prof.PositionCrisisPenalty
	if math.Abs(res.PointDelta-want) > 1e-9 {
		t.Errorf("PointDelta = %.2f, want %.2f (linear %.2f plus flat crisis penalty)",
			res.PointDelta, want, linear)
	}
}

func TestInjuryStage_QBChangeDominates(t *testing.T) {
	prof := nflProfile()

	// A QB change prices the swap off the tier table and suppresses the
	// ordinary QB injury report for that team.
	res := InjuryStage{}.Apply(GameContext{
		Game: outdoorGame(),
		Injuries: &InjuryInputs{
			Reports: []InjuryReport{
				{TeamKey: "chicago", Position: league.PosQB, Status: StatusOut, Starter: true},
			},
			QBChanges: []QBChange{{TeamKey: "chicago", Tier: league.QBTierRookie}},
		},
	}, prof)

	want := -prof.QBTierDrop[league.QBTierRookie]
	if math.Abs(res.PointDelta-want) > 1e-9 {
		t.Errorf("PointDelta = %.2f, want %.2f (tier drop only, no double count)", res.PointDelta, want)
	}
}

func TestInjuryStage_BothTeamsQBChange(t *testing.T) {
	prof := nflProfile()

	// Both starting quarterbacks change in the same week; each tier drop
	// counts against its own team.
	res := InjuryStage{}.Apply(GameContext{
		Game: outdoorGame(),
		Injuries: &InjuryInputs{
			QBChanges: []QBChange{
				{TeamKey: "chicago", Tier: league.QBTierRookie},
				{TeamKey: "green-bay", Tier: league.QBTierVeteranBackup},
			},
		},
	}, prof)

	want := -prof.QBTierDrop[league.QBTierRookie] + prof.QBTierDrop[league.QBTierVeteranBackup]
	if math.Abs(res.PointDelta-want) > 1e-9 {
		t.Errorf("PointDelta = %.2f, want %.2f (both tier drops applied)", res.PointDelta, want)
	}

	// Each team's ordinary QB report stays suppressed.
	res = InjuryStage{}.Apply(GameContext{
		Game: outdoorGame(),
		Injuries: &InjuryInputs{
			Reports: []InjuryReport{
				{TeamKey: "chicago", Position: league.PosQB, Status: StatusOut, Starter: true},
				{TeamKey: "green-bay", Position: league.PosQB, Status: StatusOut, Starter: true},
			},
			QBChanges: []QBChange{
				{TeamKey: "chicago", Tier: league.QBTierRookie},
				{TeamKey: "green-bay", Tier: league.QBTierVeteranBackup},
			},
		},
	}, prof)
	if math.Abs(res.PointDelta-want) > 1e-9 {
		t.Errorf("PointDelta = %.2f, want %.2f (no double count with reports present)", res.PointDelta, want)
	}
}

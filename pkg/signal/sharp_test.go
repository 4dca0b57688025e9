package signal

import "testing"

func TestSharpMoneyStage_NoSplitIsNeutral(t *testing.T) {
	res := SharpMoneyStage{}.Apply(GameContext{Game: outdoorGame()}, nflProfile())
	if res.Applied {
		t.Error("no split should be the neutral no-op")
	}
}

func TestSharpMoneyStage_Grading(t *testing.T) {
	prof := nflProfile() // min divergence 10; tiers 10/18/28 -> 0.10/0.20/0.35

	tests := []struct {
		name      string
		split     TicketSplit
		wantSide  string
		wantShift float64
		wantLabel string
	}{
		{
			name:     "below threshold means nothing",
			split:    TicketSplit{TicketPctHome: 55, MoneyPctHome: 60},
			wantSide: "", wantShift: 0,
		},
		{
			name:      "moderate divergence toward home",
			split:     TicketSplit{TicketPctHome: 40, MoneyPctHome: 52},
			wantSide:  "home",
			wantShift: 0.10,
			wantLabel: "moderate",
		},
		{
			name:      "strong divergence toward away",
			split:     TicketSplit{TicketPctHome: 70, MoneyPctHome: 50},
			wantSide:  "away",
			wantShift: 0.20,
			wantLabel: "strong",
		},
		{
			name:      "very strong divergence",
			split:     TicketSplit{TicketPctHome: 75, MoneyPctHome: 40},
			wantSide:  "away",
			wantShift: 0.35,
			wantLabel: "very_strong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := SharpMoneyStage{}.Apply(GameContext{
				Game:  outdoorGame(),
				Split: &tt.split,
			}, prof)

			// The stage never moves the margin, only trust.
			if res.PointDelta != 0 {
				t.Errorf("PointDelta = %.2f, sharp money must not move the line", res.PointDelta)
			}
			if res.SharpSide != tt.wantSide {
				t.Errorf("SharpSide = %q, want %q", res.SharpSide, tt.wantSide)
			}
			if res.SharpShift != tt.wantShift {
				t.Errorf("SharpShift = %.2f, want %.2f", res.SharpShift, tt.wantShift)
			}
			if tt.wantLabel != "" && res.SharpLabel != tt.wantLabel {
				t.Errorf("SharpLabel = %q, want %q", res.SharpLabel, tt.wantLabel)
			}
		})
	}
}

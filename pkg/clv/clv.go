// Package clv logs placed bets and grades them against the closing line.
// Closing-line value is the scorekeeping signal for the whole model: beat
// the close consistently and the edges are real, lose to it and they are
// noise, whatever individual results say.
package clv

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wagerlab/linehawk/pkg/edge"
	"github.com/wagerlab/linehawk/pkg/oddsmath"
)

// Result is the settlement outcome of a bet.
type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultPush    Result = "push"
)

// BetRecord is a bet as placed. Once written it is immutable; closing data
// and settlement land on the record in a second phase, never by rewriting
// the placement fields.
type BetRecord struct {
	ID       string          `json:"id"`
	GameID   string          `json:"game_id"`
	League   string          `json:"league"`
	Week     int             `json:"week"`
	Side     edge.Side       `json:"side"`
	LineHome float64         `json:"line_home"` // home spread as quoted at bet time
	Price    int             `json:"price"`     // American price taken
	Stake    decimal.Decimal `json:"stake_fraction"`
	Tier     string          `json:"tier"`
	PlacedAt time.Time       `json:"placed_at"`

	// Closing phase, zero until the market closes.
	ClosingLineHome float64   `json:"closing_line_home,omitempty"`
	ClosingPrice    int       `json:"closing_price,omitempty"`
	ClosedAt        time.Time `json:"closed_at,omitempty"`
	Graded          bool      `json:"graded"`
	ClvPoints       float64   `json:"clv_points,omitempty"`
	ClvCents        float64   `json:"clv_cents,omitempty"`

	Result Result `json:"result"`
}

// NewBetRecord captures a playable edge as a placed bet.
func NewBetRecord(e *edge.Edge, quoteLineHome float64, placedAt time.Time) (*BetRecord, error) {
	if !e.Playable() {
		return nil, fmt.Errorf("clv: edge on %s is not playable", e.GameID)
	}
	return &BetRecord{
		ID:       uuid.New().String(),
		GameID:   e.GameID,
		League:   e.League,
		Week:     e.Week,
		Side:     e.Side,
		LineHome: quoteLineHome,
		Price:    e.Price,
		Stake:    e.Stake,
		Tier:     string(e.Tier),
		PlacedAt: placedAt,
		Result:   ResultPending,
	}, nil
}

// PointsCLV measures how many points of line the bet beat the close by,
// positive when the bet got the better number. Lines are home spreads as
// quoted; an away bet sees the mirrored line, so the sign inverts.
func PointsCLV(side edge.Side, betLineHome, closeLineHome float64) float64 {
	diff := betLineHome - closeLineHome
	if side == edge.SideAway {
		return -diff
	}
	return diff
}

// CentsCLV measures the implied-probability improvement of the bet price
// over the closing price, in cents per dollar. Positive means the close
// charged more for the same position than the bet paid.
func CentsCLV(betPrice, closePrice int) (float64, error) {
	betProb, err := oddsmath.ImpliedFromAmerican(betPrice)
	if err != nil {
		return 0, fmt.Errorf("clv: bet price: %w", err)
	}
	closeProb, err := oddsmath.ImpliedFromAmerican(closePrice)
	if err != nil {
		return 0, fmt.Errorf("clv: closing price: %w", err)
	}
	return (closeProb - betProb) * 100, nil
}

// Grade applies the closing line to a pending record. Grading twice is an
// error: the close is a single fact, not a stream.
func (r *BetRecord) Grade(closeLineHome float64, closePrice int, closedAt time.Time) error {
	if r.Graded {
		return fmt.Errorf("clv: bet %s already graded", r.ID)
	}
	cents, err := CentsCLV(r.Price, closePrice)
	if err != nil {
		return err
	}
	r.ClosingLineHome = closeLineHome
	r.ClosingPrice = closePrice
	r.ClosedAt = closedAt
	r.ClvPoints = PointsCLV(r.Side, r.LineHome, closeLineHome)
	r.ClvCents = cents
	r.Graded = true
	return nil
}

// Settle records the final game outcome.
func (r *BetRecord) Settle(res Result) error {
	if res == ResultPending {
		return fmt.Errorf("clv: cannot settle bet %s back to pending", r.ID)
	}
	r.Result = res
	return nil
}

// Aggregates summarizes a set of graded bets. It is always recomputed from
// the full record set rather than updated incrementally, so a re-grade or
// late correction can never leave the summary drifted from the records.
type Aggregates struct {
	Bets        int     `json:"bets"`
	Graded      int     `json:"graded"`
	BeatClose   int     `json:"beat_close"`
	BeatRate    float64 `json:"beat_rate"`
	MeanPoints  float64 `json:"mean_clv_points"`
	MeanCents   float64 `json:"mean_clv_cents"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pushes      int     `json:"pushes"`
	TotalStaked string  `json:"total_staked"`
}

// Aggregate recomputes summary statistics over the records.
func Aggregate(records []*BetRecord) Aggregates {
	agg := Aggregates{Bets: len(records)}
	staked := decimal.Zero
	var sumPoints, sumCents float64

	for _, r := range records {
		staked = staked.Add(r.Stake)
		switch r.Result {
		case ResultWin:
			agg.Wins++
		case ResultLoss:
			agg.Losses++
		case ResultPush:
			agg.Pushes++
		}
		if !r.Graded {
			continue
		}
		agg.Graded++
		sumPoints += r.ClvPoints
		sumCents += r.ClvCents
		if r.ClvPoints > 0 || (r.ClvPoints == 0 && r.ClvCents > 0) {
			agg.BeatClose++
		}
	}

	if agg.Graded > 0 {
		agg.BeatRate = float64(agg.BeatClose) / float64(agg.Graded)
		agg.MeanPoints = sumPoints / float64(agg.Graded)
		agg.MeanCents = sumCents / float64(agg.Graded)
	}
	if math.IsNaN(agg.MeanPoints) {
		agg.MeanPoints = 0
	}
	agg.TotalStaked = staked.String()
	return agg
}

package clv

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wagerlab/linehawk/pkg/edge"
	"github.com/wagerlab/linehawk/pkg/metrics"
)

// Closing is a closing-line snapshot for one game, keyed externally by
// game ID.
type Closing struct {
	LineHome float64   `json:"line_home"`
	Price    int       `json:"price"` // American price on the bet's side
	ClosedAt time.Time `json:"closed_at"`
}

// Tracker is the two-phase bet ledger: commit at decision time, grade when
// the close lands, settle when the score is known. The mutex serializes
// the update phases so a closing write can never race a settlement write
// for the same record.
type Tracker struct {
	store   Store
	log     *logrus.Logger
	metrics *metrics.PipelineMetrics // optional

	mu sync.Mutex
}

// NewTracker wraps a store. Logger and metrics may be nil.
func NewTracker(store Store, log *logrus.Logger, pm *metrics.PipelineMetrics) *Tracker {
	if log == nil {
		log = logrus.New()
	}
	return &Tracker{store: store, log: log, metrics: pm}
}

// Commit snapshots a playable edge as a placed bet.
func (t *Tracker) Commit(ctx context.Context, e *edge.Edge, quoteLineHome float64, placedAt time.Time) (*BetRecord, error) {
	rec, err := NewBetRecord(e, quoteLineHome, placedAt)
	if err != nil {
		return nil, err
	}
	if err := t.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	t.log.WithFields(logrus.Fields{
		"bet":   rec.ID,
		"game":  rec.GameID,
		"side":  rec.Side,
		"line":  rec.LineHome,
		"stake": rec.Stake,
	}).Info("bet committed")
	if t.metrics != nil {
		t.metrics.BetsTotal.WithLabelValues(rec.League, string(rec.Result)).Inc()
	}
	return rec, nil
}

// GradeClosings applies a closing snapshot to every pending bet it covers
// and returns the number graded. Bets without a closing entry stay
// pending; already-graded bets are skipped by the store guard.
func (t *Tracker) GradeClosings(ctx context.Context, league string, closings map[string]Closing) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending, err := t.store.Ungraded(ctx, league)
	if err != nil {
		return 0, err
	}

	graded := 0
	for _, rec := range pending {
		cl, ok := closings[rec.GameID]
		if !ok {
			continue
		}
		if err := t.store.Grade(ctx, rec.ID, cl.LineHome, cl.Price, cl.ClosedAt); err != nil {
			t.log.WithError(err).WithField("bet", rec.ID).Warn("closing-line grade failed")
			continue
		}
		graded++
		if t.metrics != nil {
			cents, err := CentsCLV(rec.Price, cl.Price)
			if err != nil {
				cents = 0
			}
			t.metrics.RecordGradedBet(rec.League, PointsCLV(rec.Side, rec.LineHome, cl.LineHome), cents)
		}
	}
	if graded > 0 {
		t.log.WithFields(logrus.Fields{"league": league, "graded": graded, "pending": len(pending) - graded}).
			Info("closing lines applied")
	}
	return graded, nil
}

// Settle records a final result for one bet.
func (t *Tracker) Settle(ctx context.Context, id string, res Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Settle(ctx, id, res); err != nil {
		return err
	}
	if t.metrics != nil {
		if rec, err := t.store.Get(ctx, id); err == nil {
			t.metrics.BetsTotal.WithLabelValues(rec.League, string(res)).Inc()
		}
	}
	return nil
}

// Report returns the week's records with aggregates recomputed from the
// full set.
func (t *Tracker) Report(ctx context.Context, league string, week int) ([]*BetRecord, Aggregates, error) {
	recs, err := t.store.List(ctx, league, week)
	if err != nil {
		return nil, Aggregates{}, err
	}
	return recs, Aggregate(recs), nil
}

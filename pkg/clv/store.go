package clv

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a bet ID has no record.
var ErrNotFound = fmt.Errorf("clv: bet not found")

// Store persists bet records. Implementations must keep placement fields
// immutable: Grade and Settle update only the closing and settlement
// columns.
type Store interface {
	// Insert writes a newly placed bet.
	Insert(ctx context.Context, rec *BetRecord) error
	// Grade applies a closing line to a pending bet.
	Grade(ctx context.Context, id string, closeLineHome float64, closePrice int, closedAt time.Time) error
	// Settle records the bet outcome.
	Settle(ctx context.Context, id string, res Result) error
	// Get fetches one record.
	Get(ctx context.Context, id string) (*BetRecord, error)
	// List returns all records for a league and week, placement order.
	List(ctx context.Context, league string, week int) ([]*BetRecord, error)
	// Ungraded returns pending records whose game kicked off at or before
	// the cutoff, the candidates for closing-line grading.
	Ungraded(ctx context.Context, league string) ([]*BetRecord, error)
}

// MemoryStore is the in-process Store used by the CLI and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]*BetRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*BetRecord)}
}

func (s *MemoryStore) Insert(_ context.Context, rec *BetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ID]; ok {
		return fmt.Errorf("clv: duplicate bet %s", rec.ID)
	}
	cp := *rec
	s.recs[rec.ID] = &cp
	return nil
}

func (s *MemoryStore) Grade(_ context.Context, id string, closeLineHome float64, closePrice int, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Grade(closeLineHome, closePrice, closedAt)
}

func (s *MemoryStore) Settle(_ context.Context, id string, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Settle(res)
}

func (s *MemoryStore) Get(_ context.Context, id string) (*BetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, league string, week int) ([]*BetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*BetRecord
	for _, rec := range s.recs {
		if rec.League == league && rec.Week == week {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}

func (s *MemoryStore) Ungraded(_ context.Context, league string) ([]*BetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*BetRecord
	for _, rec := range s.recs {
		if rec.League == league && !rec.Graded {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}

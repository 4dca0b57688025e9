// Package ratings holds the per-week power ratings the baseline edge is
// computed from. The store is pure lookup: loaded once per run, never
// mutated concurrently with reads, never interpolating missing weeks.
package ratings

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// PowerRating is one team's strength estimate for one week. Ratings are
// superseded weekly; a past week's value is never rewritten, so history
// stays usable for backtesting.
type PowerRating struct {
	CanonicalKey       string  `json:"canonical_key"`
	Week               int     `json:"week"`
	Value              float64 `json:"rating_value"`
	StrengthOfSchedule float64 `json:"strength_of_schedule"`
}

// Result is a lookup outcome. Stale marks a fallback to a prior week.
type Result struct {
	PowerRating
	Stale bool `json:"stale"`
}

// ErrMissing is returned when no rating exists for a team in the requested
// week or any prior week. Callers must exclude the game, never default the
// rating to zero.
var ErrMissing = errors.New("ratings: no rating available")

// Store is the in-memory rating table for one league season.
type Store struct {
	mu    sync.RWMutex
	byKey map[string]map[int]PowerRating
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]map[int]PowerRating)}
}

// Load inserts a batch of ratings. Loading the same team/week twice keeps
// the last value; loading happens once per run before any reads.
func (s *Store) Load(batch []PowerRating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range batch {
		if s.byKey[r.CanonicalKey] == nil {
			s.byKey[r.CanonicalKey] = make(map[int]PowerRating)
		}
		s.byKey[r.CanonicalKey][r.Week] = r
	}
}

// Get returns the rating for a team and week. If the requested week is
// missing it falls back to the most recent prior week and flags the result
// stale; it never guesses forward or interpolates.
func (s *Store) Get(canonicalKey string, week int) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weeks, ok := s.byKey[canonicalKey]
	if !ok || len(weeks) == 0 {
		return Result{}, fmt.Errorf("%w: %s week %d", ErrMissing, canonicalKey, week)
	}

	if r, ok := weeks[week]; ok {
		return Result{PowerRating: r}, nil
	}

	prior := make([]int, 0, len(weeks))
	for w := range weeks {
		if w < week {
			prior = append(prior, w)
		}
	}
	if len(prior) == 0 {
		return Result{}, fmt.Errorf("%w: %s week %d (no prior week)", ErrMissing, canonicalKey, week)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(prior)))

	return Result{PowerRating: weeks[prior[0]], Stale: true}, nil
}

// Teams returns the number of teams with at least one rating loaded.
func (s *Store) Teams() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

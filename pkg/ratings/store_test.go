package ratings

import (
	"errors"
	"testing"
)

func seededStore() *Store {
	s := NewStore()
	s.Load([]PowerRating{
		{CanonicalKey: "green-bay", Week: 12, Value: 4.0, StrengthOfSchedule: 0.51},
		{CanonicalKey: "green-bay", Week: 13, Value: 4.5, StrengthOfSchedule: 0.52},
		{CanonicalKey: "chicago", Week: 13, Value: -1.0, StrengthOfSchedule: 0.49},
	})
	return s
}

func TestStore_Get(t *testing.T) {
	s := seededStore()

	tests := []struct {
		name      string
		key       string
		week      int
		wantValue float64
		wantStale bool
		wantErr   bool
	}{
		{"exact week", "green-bay", 13, 4.5, false, false},
		{"earlier exact week", "green-bay", 12, 4.0, false, false},
		{"missing week falls back stale", "green-bay", 15, 4.5, true, false},
		{"fallback picks most recent prior", "chicago", 14, -1.0, true, false},
		{"no lineage at all", "detroit", 13, 0, false, true},
		{"no prior week to fall back to", "chicago", 12, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Get(tt.key, tt.week)
			if tt.wantErr {
				if !errors.Is(err, ErrMissing) {
					t.Fatalf("Get(%s, %d) err = %v, want ErrMissing", tt.key, tt.week, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%s, %d) error: %v", tt.key, tt.week, err)
			}
			if res.Value != tt.wantValue {
				t.Errorf("Value = %.1f, want %.1f", res.Value, tt.wantValue)
			}
			if res.Stale != tt.wantStale {
				t.Errorf("Stale = %v, want %v", res.Stale, tt.wantStale)
			}
		})
	}
}

func TestStore_NeverInterpolates(t *testing.T) {
	s := NewStore()
	s.Load([]PowerRating{
		{CanonicalKey: "dallas", Week: 10, Value: 2.0},
		{CanonicalKey: "dallas", Week: 14, Value: 6.0},
	})

	// Week 12 sits between two known weeks; the store must return the
	// week-10 value flagged stale, never a blend.
	res, err := s.Get("dallas", 12)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != 2.0 || !res.Stale {
		t.Errorf("Get(dallas, 12) = %.1f stale=%v, want 2.0 stale=true", res.Value, res.Stale)
	}
}

func TestStore_Teams(t *testing.T) {
	if got := seededStore().Teams(); got != 2 {
		t.Errorf("Teams() = %d, want 2", got)
	}
}

package edge

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wagerlab/linehawk/pkg/league"
)

// ExposureLimits bounds how much bankroll a single week's card can commit.
// All values are bankroll fractions.
type ExposureLimits struct {
	MaxWeeklyExposure decimal.Decimal // summed stake fractions across the card
	MaxGameExposure   decimal.Decimal // summed stake fractions on one game
	MaxPlays          int             // max bets per week
	BlockedTeams      []string        // canonical keys to never bet
}

// DefaultExposureLimits returns conservative defaults.
func DefaultExposureLimits() *ExposureLimits {
	return &ExposureLimits{
		MaxWeeklyExposure: decimal.NewFromFloat(0.15), // 15% of bankroll per week
		MaxGameExposure:   decimal.NewFromFloat(0.05), // 5% on any one game
		MaxPlays:          12,
	}
}

// Book tracks committed exposure for one week's card and enforces limits.
// Stakes on the same game are correlated, so they share a per-game cap in
// addition to the weekly total.
type Book struct {
	limits *ExposureLimits

	mu     sync.RWMutex
	weekly decimal.Decimal
	byGame map[string]decimal.Decimal
	plays  int
}

// NewBook creates an exposure book. A nil limits uses the defaults.
func NewBook(limits *ExposureLimits) *Book {
	if limits == nil {
		limits = DefaultExposureLimits()
	}
	return &Book{limits: limits, byGame: make(map[string]decimal.Decimal)}
}

// Check validates that an edge's stake fits the remaining budget. It does
// not commit; call Record once the bet is actually logged.
func (b *Book) Check(e *Edge) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !e.Playable() {
		return fmt.Errorf("risk: %s is not a playable edge", e.GameID)
	}
	for _, blocked := range b.limits.BlockedTeams {
		if e.GameID == blocked || containsKey(e.GameID, blocked) {
			return fmt.Errorf("risk: team %s is blocked", blocked)
		}
	}
	if b.plays >= b.limits.MaxPlays {
		return fmt.Errorf("risk: weekly play limit reached: %d", b.limits.MaxPlays)
	}
	if b.weekly.Add(e.Stake).GreaterThan(b.limits.MaxWeeklyExposure) {
		return fmt.Errorf("risk: stake %s would exceed weekly exposure %s (committed %s)",
			e.Stake, b.limits.MaxWeeklyExposure, b.weekly)
	}
	if b.byGame[e.GameID].Add(e.Stake).GreaterThan(b.limits.MaxGameExposure) {
		return fmt.Errorf("risk: stake %s would exceed per-game exposure %s on %s",
			e.Stake, b.limits.MaxGameExposure, e.GameID)
	}
	return nil
}

// Record commits an approved stake against the budget.
func (b *Book) Record(e *Edge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.weekly = b.weekly.Add(e.Stake)
	b.byGame[e.GameID] = b.byGame[e.GameID].Add(e.Stake)
	b.plays++
}

// Reset clears the book for a new week.
func (b *Book) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.weekly = decimal.Zero
	b.byGame = make(map[string]decimal.Decimal)
	b.plays = 0
}

// BookStatus is a summary of committed exposure.
type BookStatus struct {
	WeeklyExposure string `json:"weekly_exposure"`
	MaxWeekly      string `json:"max_weekly"`
	Plays          int    `json:"plays"`
	MaxPlays       int    `json:"max_plays"`
	Games          int    `json:"games"`
}

// Status returns the current exposure summary.
func (b *Book) Status() BookStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BookStatus{
		WeeklyExposure: b.weekly.String(),
		MaxWeekly:      b.limits.MaxWeeklyExposure.String(),
		Plays:          b.plays,
		MaxPlays:       b.limits.MaxPlays,
		Games:          len(b.byGame),
	}
}

// ApplyCard checks and records a ranked card in order, returning the edges
// that fit the budget. Edges that miss the cut carry the refusal as their
// reason and stake zero.
func (b *Book) ApplyCard(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if !e.Playable() {
			out = append(out, e)
			continue
		}
		if err := b.Check(&e); err != nil {
			e.Side = SideNone
			e.Tier = league.TierNoPlay
			e.Stake = decimal.Zero
			e.Reason = err.Error()
			out = append(out, e)
			continue
		}
		b.Record(&e)
		out = append(out, e)
	}
	return out
}

// containsKey reports whether the game ID "<away>|<home>" includes the key.
func containsKey(gameID, key string) bool {
	n := len(key)
	if n == 0 || len(gameID) < n {
		return false
	}
	if gameID[:n] == key && (len(gameID) == n || gameID[n] == '|') {
		return true
	}
	if len(gameID) > n && gameID[len(gameID)-n:] == key && gameID[len(gameID)-n-1] == '|' {
		return true
	}
	return false
}

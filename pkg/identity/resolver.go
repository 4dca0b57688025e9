// Package identity resolves team names from heterogeneous source
// vocabularies into one canonical key space. Every loader — schedule, odds,
// ratings — must run raw names through the same Resolver so that the same
// real-world team always reduces to the same key; per-loader normalization
// is the historical source of silent match failures.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Source identifies an upstream vocabulary. Aliases are keyed per source
// because the same raw string can mean different teams across providers.
type Source string

const (
	SourceSchedule Source = "schedule"
	SourceOdds     Source = "odds"
	SourceRatings  Source = "ratings"
	SourceWeather  Source = "weather"
	SourceNews     Source = "news"
)

// CanonicalTeam is the single stable identity for a real-world team within
// a league. Created once per season from a seed roster, never mutated
// mid-season.
type CanonicalTeam struct {
	League      string `json:"league"`
	Key         string `json:"canonical_key"`
	DisplayName string `json:"display_name"`
}

// ErrUnresolved is returned when a raw name has no canonical mapping.
var ErrUnresolved = errors.New("identity: unresolved team name")

// Unmatched records a failed resolution so it can be surfaced instead of
// silently dropped.
type Unmatched struct {
	Source  Source `json:"source"`
	RawName string `json:"raw_name"`
}

// Resolver maps (source, raw name) pairs onto canonical teams. State is
// loaded once per run and read-locked afterwards; it is safe for concurrent
// readers.
type Resolver struct {
	league string

	mu        sync.RWMutex
	byKey     map[string]CanonicalTeam
	byBase    map[string]CanonicalTeam     // base name -> team
	aliases   map[Source]map[string]string // source -> normalized raw -> key
	mascots   map[string]bool              // tokens stripped during base reduction
	attempts  int
	misses    int
	unmatched []Unmatched
}

// NewResolver seeds a resolver from the season roster. The base-name index
// and the mascot token set are both derived from the roster so schedule-side
// and odds-side lookups share one reduction.
func NewResolver(league string, roster []CanonicalTeam) *Resolver {
	r := &Resolver{
		league:  league,
		byKey:   make(map[string]CanonicalTeam, len(roster)),
		byBase:  make(map[string]CanonicalTeam, len(roster)*2),
		aliases: make(map[Source]map[string]string),
		mascots: make(map[string]bool),
	}

	for _, t := range roster {
		r.byKey[t.Key] = t

		full := Normalize(t.DisplayName)
		r.byBase[full] = t
		r.byBase[Normalize(t.Key)] = t

		// Everything after the locality part of the display name is
		// treated as mascot vocabulary ("Green Bay Packers" -> "packers").
		base := Normalize(t.Key)
		if rest := strings.TrimSpace(strings.TrimPrefix(full, base)); rest != "" && rest != full {
			for _, tok := range strings.Fields(rest) {
				r.mascots[tok] = true
			}
			r.byBase[base] = t
		}
	}
	return r
}

// AddAlias registers a source-specific alias for teams whose raw name does
// not reduce to a shared base form (merged institutions, rebrands,
// ambiguous abbreviations). The alias table is versioned configuration, not
// a closed set.
func (r *Resolver) AddAlias(source Source, rawName, canonicalKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[canonicalKey]; !ok {
		return fmt.Errorf("identity: alias %q -> unknown key %q", rawName, canonicalKey)
	}
	if r.aliases[source] == nil {
		r.aliases[source] = make(map[string]string)
	}
	r.aliases[source][Normalize(rawName)] = canonicalKey
	return nil
}

// Resolve maps a raw name from the given source to its canonical team.
// Both directions of a match run through the identical transform: normalize,
// source alias table, base lookup, mascot-stripped base lookup.
func (r *Resolver) Resolve(source Source, rawName string) (CanonicalTeam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts++
	if team, ok := r.lookupLocked(source, rawName); ok {
		return team, nil
	}

	r.misses++
	r.unmatched = append(r.unmatched, Unmatched{Source: source, RawName: rawName})
	return CanonicalTeam{}, fmt.Errorf("%w: %s %q", ErrUnresolved, source, rawName)
}

func (r *Resolver) lookupLocked(source Source, rawName string) (CanonicalTeam, bool) {
	normalized := Normalize(rawName)

	if byRaw, ok := r.aliases[source]; ok {
		if key, ok := byRaw[normalized]; ok {
			return r.byKey[key], true
		}
	}
	if t, ok := r.byBase[normalized]; ok {
		return t, true
	}
	if t, ok := r.byBase[r.stripMascots(normalized)]; ok {
		return t, true
	}
	return CanonicalTeam{}, false
}

// stripMascots removes trailing roster-derived mascot tokens from a
// normalized name, producing the base name shared across vocabularies.
func (r *Resolver) stripMascots(normalized string) string {
	fields := strings.Fields(normalized)
	for len(fields) > 1 && r.mascots[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// Team returns the canonical team for a key.
func (r *Resolver) Team(key string) (CanonicalTeam, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byKey[key]
	return t, ok
}

// League returns the league this resolver was seeded for.
func (r *Resolver) League() string { return r.league }

// MatchRate returns the fraction of resolution attempts that succeeded.
// Returns 1 when nothing has been attempted yet.
func (r *Resolver) MatchRate() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.attempts == 0 {
		return 1
	}
	return float64(r.attempts-r.misses) / float64(r.attempts)
}

// Stats returns the resolution attempt and miss counts for this run.
func (r *Resolver) Stats() (attempts, misses int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.attempts, r.misses
}

// UnmatchedNames returns every raw name that failed to resolve, in
// observation order.
func (r *Resolver) UnmatchedNames() []Unmatched {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Unmatched, len(r.unmatched))
	copy(out, r.unmatched)
	return out
}

// Normalize reduces a raw team name to its matching form: lowercase,
// accents removed, punctuation collapsed. This is the one shared transform;
// do not reimplement it per loader.
func Normalize(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '&':
			b.WriteString(" and ")
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// GameKey derives the matching key for an (away, home) pairing. Every
// loader that needs a game key must call this function; constructing the
// key inline is how schedule and odds dictionaries historically drifted
// apart.
func GameKey(awayKey, homeKey string) string {
	return awayKey + "|" + homeKey
}

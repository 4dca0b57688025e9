package identity

import "testing"

func testResolver() *Resolver {
	r := NewResolver("nfl", DefaultNFLRoster())
	SeedNFLAliases(r)
	return r
}

func TestResolve_CrossSourceEquality(t *testing.T) {
	r := testResolver()

	// The same real team under different source vocabularies must reduce
	// to the same canonical key.
	tests := []struct {
		name    string
		source  Source
		rawName string
		wantKey string
	}{
		{"schedule full name", SourceSchedule, "Green Bay Packers", "green-bay"},
		{"odds city only", SourceOdds, "Green Bay", "green-bay"},
		{"ratings vocab", SourceRatings, "Green Bay", "green-bay"},
		{"schedule with mascot", SourceSchedule, "Kansas City Chiefs", "kansas-city"},
		{"odds mascot stripped", SourceOdds, "Kansas City Chiefs", "kansas-city"},
		{"shared market full", SourceSchedule, "Los Angeles Rams", "los-angeles-rams"},
		{"shared market alias", SourceOdds, "LA Rams", "los-angeles-rams"},
		{"ratings abbreviation", SourceRatings, "NYG", "new-york-giants"},
		{"relocated franchise", SourceOdds, "Oakland Raiders", "las-vegas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, err := r.Resolve(tt.source, tt.rawName)
			if err != nil {
				t.Fatalf("Resolve(%s, %q) error: %v", tt.source, tt.rawName, err)
			}
			if team.Key != tt.wantKey {
				t.Errorf("Resolve(%s, %q) = %q, want %q", tt.source, tt.rawName, team.Key, tt.wantKey)
			}
		})
	}
}

func TestResolve_UnmatchedIsReported(t *testing.T) {
	r := testResolver()

	if _, err := r.Resolve(SourceOdds, "Hamilton Tiger-Cats"); err == nil {
		t.Fatal("expected ErrUnresolved for unknown team")
	}
	if _, err := r.Resolve(SourceSchedule, "Green Bay Packers"); err != nil {
		t.Fatalf("known team failed: %v", err)
	}

	unmatched := r.UnmatchedNames()
	if len(unmatched) != 1 {
		t.Fatalf("UnmatchedNames() len = %d, want 1", len(unmatched))
	}
	if unmatched[0].RawName != "Hamilton Tiger-Cats" {
		t.Errorf("unmatched name = %q", unmatched[0].RawName)
	}

	rate := r.MatchRate()
	if rate != 0.5 {
		t.Errorf("MatchRate() = %.2f, want 0.50", rate)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Green Bay Packers", "green bay packers"},
		{"  KANSAS   CITY  ", "kansas city"},
		{"St. Louis", "st louis"},
		{"Texas A&M", "texas a and m"},
		{"José State", "jose state"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGameKey_SingleConstruction(t *testing.T) {
	// The key must be identical regardless of which loader builds it, and
	// building it twice from the same pair is idempotent.
	k1 := GameKey("green-bay", "chicago")
	k2 := GameKey("green-bay", "chicago")
	if k1 != k2 {
		t.Errorf("GameKey not idempotent: %q vs %q", k1, k2)
	}
	if k1 != "green-bay|chicago" {
		t.Errorf("GameKey = %q, want %q", k1, "green-bay|chicago")
	}
	// Order matters: away|home, never sorted.
	if GameKey("chicago", "green-bay") == k1 {
		t.Error("GameKey must distinguish home from away")
	}
}

func TestAddAlias_UnknownKey(t *testing.T) {
	r := testResolver()
	if err := r.AddAlias(SourceOdds, "Someone", "not-a-team"); err == nil {
		t.Error("AddAlias should reject unknown canonical key")
	}
}

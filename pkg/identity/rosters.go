package identity

// DefaultNFLRoster returns the NFL seed roster for a season. Keys are
// stable city slugs, with full-name slugs where two franchises share a
// market and the city alone cannot disambiguate.
func DefaultNFLRoster() []CanonicalTeam {
	names := map[string]string{
		"arizona":              "Arizona Cardinals",
		"atlanta":              "Atlanta Falcons",
		"baltimore":            "Baltimore Ravens",
		"buffalo":              "Buffalo Bills",
		"carolina":             "Carolina Panthers",
		"chicago":              "Chicago Bears",
		"cincinnati":           "Cincinnati Bengals",
		"cleveland":            "Cleveland Browns",
		"dallas":               "Dallas Cowboys",
		"denver":               "Denver Broncos",
		"detroit":              "Detroit Lions",
		"green-bay":            "Green Bay Packers",
		"houston":              "Houston Texans",
		"indianapolis":         "Indianapolis Colts",
		"jacksonville":         "Jacksonville Jaguars",
		"kansas-city":          "Kansas City Chiefs",
		"las-vegas":            "Las Vegas Raiders",
		"los-angeles-chargers": "Los Angeles Chargers",
		"los-angeles-rams":     "Los Angeles Rams",
		"miami":                "Miami Dolphins",
		"minnesota":            "Minnesota Vikings",
		"new-england":          "New England Patriots",
		"new-orleans":          "New Orleans Saints",
		"new-york-giants":      "New York Giants",
		"new-york-jets":        "New York Jets",
		"philadelphia":         "Philadelphia Eagles",
		"pittsburgh":           "Pittsburgh Steelers",
		"san-francisco":        "San Francisco 49ers",
		"seattle":              "Seattle Seahawks",
		"tampa-bay":            "Tampa Bay Buccaneers",
		"tennessee":            "Tennessee Titans",
		"washington":           "Washington Commanders",
	}

	roster := make([]CanonicalTeam, 0, len(names))
	for key, display := range names {
		roster = append(roster, CanonicalTeam{League: "nfl", Key: key, DisplayName: display})
	}
	return roster
}

// SeedNFLAliases installs the alias exceptions observed across the usual
// NFL vocabularies: abbreviated market names, legacy brandings, and
// mascot-only forms for shared-market franchises. The set is empirical and
// grows per deployment; unknown names still surface as unmatched records.
func SeedNFLAliases(r *Resolver) {
	type alias struct {
		source Source
		raw    string
		key    string
	}

	for _, a := range []alias{
		{SourceOdds, "LA Rams", "los-angeles-rams"},
		{SourceOdds, "L.A. Rams", "los-angeles-rams"},
		{SourceOdds, "LA Chargers", "los-angeles-chargers"},
		{SourceOdds, "L.A. Chargers", "los-angeles-chargers"},
		{SourceOdds, "NY Giants", "new-york-giants"},
		{SourceOdds, "NY Jets", "new-york-jets"},
		{SourceOdds, "Washington Football Team", "washington"},
		{SourceOdds, "Oakland Raiders", "las-vegas"},
		{SourceSchedule, "Rams", "los-angeles-rams"},
		{SourceSchedule, "Chargers", "los-angeles-chargers"},
		{SourceSchedule, "Giants", "new-york-giants"},
		{SourceSchedule, "Jets", "new-york-jets"},
		{SourceRatings, "LAR", "los-angeles-rams"},
		{SourceRatings, "LAC", "los-angeles-chargers"},
		{SourceRatings, "NYG", "new-york-giants"},
		{SourceRatings, "NYJ", "new-york-jets"},
		{SourceRatings, "JAX", "jacksonville"},
		{SourceRatings, "WSH", "washington"},
	} {
		// Seed aliases reference roster keys, so registration cannot fail.
		_ = r.AddAlias(a.source, a.raw, a.key)
	}
}

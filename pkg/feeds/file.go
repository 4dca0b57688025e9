package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wagerlab/linehawk/pkg/identity"
	"github.com/wagerlab/linehawk/pkg/league"
)

// FileProvider serves every feed interface from JSON files in one
// directory, the format the upstream scrapers drop their snapshots in.
// Schedule and ratings files must exist; the rest are optional and an
// absent file yields an empty result.
type FileProvider struct {
	dir string
}

// NewFileProvider points at a snapshot directory.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

func (f *FileProvider) Schedule(_ context.Context, lg league.League, week int) ([]identity.ScheduleEntry, error) {
	var entries []identity.ScheduleEntry
	if err := f.load(f.name("schedule", lg, week), true, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *FileProvider) Quotes(_ context.Context, lg league.League, week int) ([]identity.RawQuote, error) {
	var quotes []identity.RawQuote
	if err := f.load(f.name("odds", lg, week), false, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (f *FileProvider) Ratings(_ context.Context, lg league.League, week int) ([]RawRating, error) {
	var ratings []RawRating
	if err := f.load(f.name("ratings", lg, week), true, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (f *FileProvider) Forecasts(_ context.Context, lg league.League, week int) ([]VenueForecast, error) {
	var forecasts []VenueForecast
	if err := f.load(f.name("weather", lg, week), false, &forecasts); err != nil {
		return nil, err
	}
	return forecasts, nil
}

func (f *FileProvider) Injuries(_ context.Context, lg league.League, week int) ([]RawInjury, []RawQBChange, error) {
	var payload struct {
		Reports   []RawInjury   `json:"reports"`
		QBChanges []RawQBChange `json:"qb_changes"`
	}
	if err := f.load(f.name("injuries", lg, week), false, &payload); err != nil {
		return nil, nil, err
	}
	return payload.Reports, payload.QBChanges, nil
}

func (f *FileProvider) GameFacts(_ context.Context, lg league.League, week int) ([]GameFacts, error) {
	var facts []GameFacts
	if err := f.load(f.name("context", lg, week), false, &facts); err != nil {
		return nil, err
	}
	return facts, nil
}

func (f *FileProvider) News(_ context.Context, lg league.League) ([]RawNews, error) {
	var items []RawNews
	if err := f.load(fmt.Sprintf("news_%s.json", lg), false, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (f *FileProvider) name(kind string, lg league.League, week int) string {
	return fmt.Sprintf("%s_%s_week%d.json", kind, lg, week)
}

// load reads and decodes one snapshot file. Required files must exist;
// optional ones decode to the zero value when absent.
func (f *FileProvider) load(name string, required bool, out any) error {
	path := filepath.Join(f.dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if required {
			return fmt.Errorf("feeds: required snapshot %s missing", path)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("feeds: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("feeds: decode %s: %w", path, err)
	}
	return nil
}

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Source discovers catalog levels from the odds site. Implemented by the
// scraper; faked in tests.
type Source interface {
	// ScrapeSports returns sport -> sport page URL.
	ScrapeSports(ctx context.Context) (map[string]string, error)
	// ScrapeCountries returns, per sport page, country -> country page URL.
	ScrapeCountries(ctx context.Context, sports map[string]string) (map[string]map[string]string, error)
	// ScrapeLeagues returns the full catalog given the country pages.
	ScrapeLeagues(ctx context.Context, countries map[string]map[string]string) (Catalog, error)
}

// Reload policy values. Reloading an upper level invalidates everything
// below it, so "sports" rescrapes all three levels.
const (
	ReloadNone      = ""
	ReloadAll       = "all"
	ReloadSports    = "sports"
	ReloadCountries = "countries"
	ReloadLeagues   = "leagues"
)

// Files names the JSON cache file per catalog level.
type Files struct {
	Sports    string
	Countries string
	Leagues   string
}

// Manager resolves the catalog from the JSON file cache, falling back to
// the Source when a file is missing or a reload is requested.
type Manager struct {
	source Source
	files  Files
	reload string

	sports    map[string]string
	countries map[string]map[string]string
	leagues   Catalog
}

func NewManager(source Source, files Files, reload string) *Manager {
	return &Manager{source: source, files: files, reload: reload}
}

// Resolve returns the full catalog, loading or scraping each level as the
// reload policy dictates.
func (m *Manager) Resolve(ctx context.Context) (Catalog, error) {
	forced := m.reload == ReloadAll || m.reload == ReloadSports
	if err := m.loadSports(ctx, forced); err != nil {
		return nil, err
	}

	forced = forced || m.reload == ReloadCountries
	if err := m.loadCountries(ctx, forced); err != nil {
		return nil, err
	}

	forced = forced || m.reload == ReloadLeagues
	if err := m.loadLeagues(ctx, forced); err != nil {
		return nil, err
	}
	return m.leagues, nil
}

func (m *Manager) loadSports(ctx context.Context, force bool) error {
	if !force {
		if err := Load(m.files.Sports, &m.sports); err == nil {
			return nil
		}
		slog.Warn("Sports file unreadable, scraping sports now", "file", m.files.Sports)
	} else {
		slog.Info("Reloading sports data")
	}

	sports, err := m.source.ScrapeSports(ctx)
	if err != nil {
		return fmt.Errorf("failed to scrape sports: %w", err)
	}
	m.sports = sports
	if err := Store(m.sports, m.files.Sports); err != nil {
		slog.Warn("Could not cache sports", "error", err)
	}
	return nil
}

func (m *Manager) loadCountries(ctx context.Context, force bool) error {
	if !force {
		if err := Load(m.files.Countries, &m.countries); err == nil {
			return nil
		}
		slog.Warn("Countries file unreadable, scraping countries now", "file", m.files.Countries)
	} else {
		slog.Info("Reloading countries data")
	}

	countries, err := m.source.ScrapeCountries(ctx, m.sports)
	if err != nil {
		return fmt.Errorf("failed to scrape countries: %w", err)
	}
	m.countries = countries
	if err := Store(m.countries, m.files.Countries); err != nil {
		slog.Warn("Could not cache countries", "error", err)
	}
	return nil
}

func (m *Manager) loadLeagues(ctx context.Context, force bool) error {
	if !force {
		if err := Load(m.files.Leagues, &m.leagues); err == nil {
			return nil
		}
		slog.Warn("Leagues file unreadable, scraping leagues now", "file", m.files.Leagues)
	} else {
		slog.Info("Reloading leagues data")
	}

	leagues, err := m.source.ScrapeLeagues(ctx, m.countries)
	if err != nil {
		return fmt.Errorf("failed to scrape leagues: %w", err)
	}
	m.leagues = leagues
	if err := Store(m.leagues, m.files.Leagues); err != nil {
		slog.Warn("Could not cache leagues", "error", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

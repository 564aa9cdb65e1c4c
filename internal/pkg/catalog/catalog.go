package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Catalog is the fully resolved navigation tree: sport -> country -> league
// -> page locator (URL).
type Catalog map[string]map[string]map[string]string

// LeagueRef addresses one leaf of the catalog.
type LeagueRef struct {
	Sport   string
	Country string
	League  string
	URL     string
}

// Leagues flattens the catalog into leaf references in sport, country,
// league order (lexicographic within each level, so a walk is deterministic).
func (c Catalog) Leagues() []LeagueRef {
	var refs []LeagueRef
	for _, sport := range sortedKeys(c) {
		countries := c[sport]
		for _, country := range sortedKeys(countries) {
			leagues := countries[country]
			for _, league := range sortedKeys(leagues) {
				refs = append(refs, LeagueRef{
					Sport:   sport,
					Country: country,
					League:  league,
					URL:     leagues[league],
				})
			}
		}
	}
	return refs
}

// Store writes v to path as indented JSON.
func Store(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Load reads JSON from path into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

package scraper

import (
	"fmt"
	"strings"
	"time"
)

// kickoffLayout matches the site's kickoff line once its fragments are
// joined, e.g. "Monday,01 Sep 2026,18:30".
const kickoffLayout = "Monday,02 Jan 2006,15:04"

// parseKickoff parses a kickoff string, collapsing the double spaces the
// page sometimes renders.
func parseKickoff(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "  ", " "))
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty kickoff string")
	}
	t, err := time.Parse(kickoffLayout, cleaned)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse kickoff %q: %w", raw, err)
	}
	return t, nil
}

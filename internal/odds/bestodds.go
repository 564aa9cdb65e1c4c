package odds

import (
	"log/slog"

	"allusion/internal/pkg/models"
)

// BestOddsTable reduces raw observations to one BestOdds row per match.
//
// Observations are grouped by (league, match) in first-encountered order.
// For every outcome quoted anywhere in a group the row carries the maximum
// odds and the bookmaker that offered it; when two bookmakers quote the
// same maximum the first one encountered wins. Metadata comes from the
// first valid observation of the group.
//
// Invalid observations (empty book, no positive quote) are dropped with a
// log line and never corrupt the rest of their group. The function is pure:
// same input, same output, no state between calls.
func BestOddsTable(observations []models.Observation) []models.BestOdds {
	groups := map[string][]models.Observation{}
	var order []string

	for i := range observations {
		obs := observations[i]
		if err := obs.Validate(); err != nil {
			slog.Debug("Dropping invalid observation", "error", err)
			continue
		}
		key := obs.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], obs)
	}

	rows := make([]models.BestOdds, 0, len(order))
	for _, key := range order {
		row, ok := bestOfGroup(groups[key])
		if !ok {
			slog.Warn("Skipping match group with no usable observations", "group", key)
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// bestOfGroup folds one match group into a BestOdds row. Returns false for
// an empty group so a bad group skips the match instead of aborting the batch.
func bestOfGroup(group []models.Observation) (models.BestOdds, bool) {
	if len(group) == 0 {
		return models.BestOdds{}, false
	}

	first := group[0]
	row := models.BestOdds{
		Sport:      first.Sport,
		Country:    first.Country,
		League:     first.League,
		Match:      first.Match,
		Home:       first.Home,
		Away:       first.Away,
		MatchTime:  first.MatchTime,
		UpdateTime: first.UpdateTime,
		Best:       map[models.Outcome]models.BestPrice{},
	}

	for _, obs := range group {
		for outcome, odd := range obs.Odds {
			if odd <= 0 {
				continue
			}
			best, seen := row.Best[outcome]
			// Strict > keeps the first-seen bookmaker on ties.
			if !seen || odd > best.Odds {
				row.Best[outcome] = models.BestPrice{Odds: odd, Book: obs.Book}
			}
		}
	}

	if len(row.Best) == 0 {
		return models.BestOdds{}, false
	}
	return row, true
}

package collect

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"allusion/internal/pkg/catalog"
	"allusion/internal/pkg/models"
)

// ErrNoData reports that a league or match page was reachable but carried
// no odds. Distinct from a fetch crash so tests and logs can tell the two
// apart; both skip the leaf and continue.
var ErrNoData = errors.New("no odds data found")

// Fetcher obtains the raw observations for one league. Implemented by the
// oddsportal scraper; faked in tests.
type Fetcher interface {
	FetchLeagueOdds(ctx context.Context, ref catalog.LeagueRef) ([]models.Observation, error)
}

// Pipeline walks a catalog and collects every league's observations into
// one table. A failed league is logged and skipped, never fatal.
type Pipeline struct {
	fetcher Fetcher
	workers int
}

// NewPipeline builds a pipeline. workers bounds concurrent league fetches;
// anything below 1 means sequential.
func NewPipeline(fetcher Fetcher, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{fetcher: fetcher, workers: workers}
}

// Collect fetches every leaf league of the catalog and concatenates the
// per-league results in catalog order. The reduction is pure: each league
// fills its own slot and the slots are flattened at the end, so the output
// is identical whether fetches run sequentially or on the worker pool.
// Returns an empty table when every league fails.
func (p *Pipeline) Collect(ctx context.Context, cat catalog.Catalog) []models.Observation {
	refs := cat.Leagues()
	slots := make([][]models.Observation, len(refs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)
	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ref catalog.LeagueRef) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = p.collectLeague(ctx, ref)
		}(i, ref)
	}
	wg.Wait()

	var table []models.Observation
	for _, slot := range slots {
		table = append(table, slot...)
	}
	return table
}

func (p *Pipeline) collectLeague(ctx context.Context, ref catalog.LeagueRef) []models.Observation {
	obs, err := p.fetcher.FetchLeagueOdds(ctx, ref)
	switch {
	case errors.Is(err, ErrNoData):
		slog.Info("No odds for league", "sport", ref.Sport, "country", ref.Country, "league", ref.League)
		return nil
	case err != nil:
		slog.Warn("League fetch failed, skipping",
			"sport", ref.Sport, "country", ref.Country, "league", ref.League, "error", err)
		return nil
	}
	slog.Info("Collected league odds",
		"sport", ref.Sport, "country", ref.Country, "league", ref.League, "observations", len(obs))
	return obs
}

package scraper

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"allusion/internal/collect"
	"allusion/internal/pkg/catalog"
	"allusion/internal/pkg/models"
)

// bookRow is one bookmaker line on a match page: the book name and its
// quoted prices in home/draw/away order (two entries for two-way markets).
type bookRow struct {
	Book string   `json:"book"`
	Odds []string `json:"odds"`
}

// matchPage is everything extracted from one match's 1X2 full-time view.
type matchPage struct {
	Kickoff string    `json:"kickoff"`
	Players string    `json:"players"`
	Books   []bookRow `json:"books"`
}

// FetchLeagueOdds lists the league's match pages and scrapes each one's
// full-time bookmaker prices. One broken match page is skipped; a league
// page listing no matches reports collect.ErrNoData.
func (s *Scraper) FetchLeagueOdds(ctx context.Context, ref catalog.LeagueRef) ([]models.Observation, error) {
	if err := s.navigate(ctx, ref.URL); err != nil {
		return nil, err
	}
	links, err := s.collectLinks(ctx, "main a")
	if err != nil {
		return nil, err
	}

	// Match anchors start with the kickoff time ("14:30 Arsenal - Chelsea").
	var matchURLs []string
	for _, l := range links {
		if l.Text != "" && l.Text[0] >= '0' && l.Text[0] <= '9' {
			matchURLs = append(matchURLs, s.absoluteURL(l.Href))
		}
	}
	if len(matchURLs) == 0 {
		return nil, collect.ErrNoData
	}

	var observations []models.Observation
	for _, url := range matchURLs {
		obs, err := s.fetchMatchOdds(ctx, ref, url)
		if err != nil {
			slog.Warn("Match page failed, skipping", "url", url, "error", err)
			continue
		}
		observations = append(observations, obs...)
	}
	if len(observations) == 0 {
		return nil, collect.ErrNoData
	}
	return observations, nil
}

// fetchMatchOdds opens one match page, switches to the 1X2 full-time view
// and reads every bookmaker row.
func (s *Scraper) fetchMatchOdds(ctx context.Context, ref catalog.LeagueRef, url string) ([]models.Observation, error) {
	slog.Debug("Scraping match", "url", url)
	err := s.navigate(ctx, url,
		chromedp.Click(`//span[contains(., "1X2")]//div`, chromedp.BySearch),
		chromedp.Click(`//*[text()="Full Time"]`, chromedp.BySearch),
		chromedp.Sleep(time.Second),
	)
	if err != nil {
		return nil, err
	}

	var page matchPage
	if err := s.run(ctx, chromedp.Evaluate(matchPageJS, &page)); err != nil {
		return nil, err
	}
	return s.pageObservations(ref, page), nil
}

// pageObservations normalizes a scraped match page into observations.
// Bookmaker rows with an empty name or unparseable prices are dropped, not
// propagated.
func (s *Scraper) pageObservations(ref catalog.LeagueRef, page matchPage) []models.Observation {
	home, away, ok := splitPlayers(page.Players)
	if !ok {
		slog.Warn("Could not split players", "players", page.Players, "league", ref.League)
		return nil
	}

	kickoff, err := parseKickoff(page.Kickoff)
	if err != nil {
		slog.Warn("Could not parse kickoff, leaving zero", "kickoff", page.Kickoff, "error", err)
	}
	now := time.Now().UTC()

	outcomeOrder := []models.Outcome{models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway}

	var observations []models.Observation
	for _, row := range page.Books {
		book := strings.ToLower(strings.TrimSpace(row.Book))
		if book == "" {
			continue
		}

		// Two prices means a no-draw market: home then away.
		order := outcomeOrder
		if len(row.Odds) == 2 {
			order = []models.Outcome{models.OutcomeHome, models.OutcomeAway}
		}

		quotes := map[models.Outcome]float64{}
		for i, raw := range row.Odds {
			if i >= len(order) {
				break
			}
			odd, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || odd <= 0 {
				continue
			}
			quotes[order[i]] = odd
		}
		if len(quotes) == 0 {
			slog.Debug("Bookmaker row without usable prices", "book", book, "match", page.Players)
			continue
		}

		observations = append(observations, models.Observation{
			Sport:      ref.Sport,
			Country:    ref.Country,
			League:     ref.League,
			Match:      strings.TrimSpace(page.Players),
			Home:       home,
			Away:       away,
			MatchTime:  kickoff,
			UpdateTime: now,
			Book:       book,
			Odds:       quotes,
		})
	}
	return observations
}

// splitPlayers parses "Home - Away" into its two sides.
func splitPlayers(players string) (home, away string, ok bool) {
	parts := strings.SplitN(players, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	home = strings.TrimSpace(parts[0])
	away = strings.TrimSpace(parts[1])
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

// matchPageJS extracts the kickoff line, the players line and the bookmaker
// rows from the odds table in one evaluation.
const matchPageJS = `(() => {
	const text = el => (el ? (el.innerText || "").trim() : "");

	const kickoffEl = document.querySelector('[data-testid="game-time-item"]')
		|| document.querySelector(".game-time");
	const playersEl = document.querySelector('[data-testid="game-participants"] p')
		|| document.querySelector(".participants p");

	const rows = Array.from(document.querySelectorAll('[data-testid="over-under-expanded-row"], .border-black-borders.flex.h-9'));
	const books = rows.map(row => {
		const name = text(row.querySelector("a p, img + p"));
		const odds = Array.from(row.querySelectorAll('[data-testid="odd-container"] p, .odds-content p'))
			.map(p => text(p))
			.filter(v => v && /^\d/.test(v));
		return {book: name.split(".")[0], odds: odds};
	}).filter(b => b.book);

	return {kickoff: text(kickoffEl), players: text(playersEl), books: books};
})()`

// Package scraper navigates oddsportal.com with a headless browser and
// turns its pages into catalogs and odds observations. Everything here is
// glue around one site's markup; the aggregation engine never depends on it.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"allusion/internal/pkg/catalog"
	"allusion/internal/pkg/config"
)

// link is one anchor extracted from a page.
type link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Scraper drives a single browser session reused across navigations.
type Scraper struct {
	cfg     *config.ScraperConfig
	baseURL string

	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// New launches the browser. Call Close when done.
func New(ctx context.Context, cfg *config.ScraperConfig) (*Scraper, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser now so a broken Chrome install fails fast.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Scraper{
		cfg:           cfg,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

func (s *Scraper) Close() {
	s.cancelBrowser()
	s.cancelAlloc()
}

// run executes actions on the browser session under the navigation timeout,
// honouring the caller's cancellation.
func (s *Scraper) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavTimeoutDuration())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// navigate loads a page and waits for it to settle.
func (s *Scraper) navigate(ctx context.Context, url string, extra ...chromedp.Action) error {
	actions := append([]chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2 * time.Second),
	}, extra...)

	if err := s.run(ctx, actions...); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// collectLinks pulls anchors matching a CSS selector off the current page.
func (s *Scraper) collectLinks(ctx context.Context, selector string) ([]link, error) {
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%q))
		.map(a => ({text: (a.innerText || "").trim(), href: a.getAttribute("href") || ""}))
		.filter(l => l.text && l.href)`, selector)

	var links []link
	if err := s.run(ctx, chromedp.Evaluate(js, &links)); err != nil {
		return nil, fmt.Errorf("failed to extract links: %w", err)
	}
	return links, nil
}

func (s *Scraper) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return s.baseURL + "/" + strings.TrimLeft(href, "/")
}

// ScrapeSports reads the main navigation and keeps the configured sports.
func (s *Scraper) ScrapeSports(ctx context.Context) (map[string]string, error) {
	slog.Info("Scraping sports", "url", s.baseURL)
	if err := s.navigate(ctx, s.baseURL); err != nil {
		return nil, err
	}
	links, err := s.collectLinks(ctx, "nav li a")
	if err != nil {
		return nil, err
	}

	sports := map[string]string{}
	for _, l := range links {
		if contains(s.cfg.Sports, l.Text) {
			sports[l.Text] = s.absoluteURL(l.Href)
		}
	}
	if len(sports) == 0 {
		return nil, fmt.Errorf("no configured sports found on %s", s.baseURL)
	}
	return sports, nil
}

// ScrapeCountries visits each sport page and keeps the configured countries.
func (s *Scraper) ScrapeCountries(ctx context.Context, sports map[string]string) (map[string]map[string]string, error) {
	data := map[string]map[string]string{}
	for sport, url := range sports {
		slog.Info("Scraping countries", "sport", sport, "url", url)
		data[sport] = map[string]string{}
		if err := s.navigate(ctx, url); err != nil {
			slog.Warn("Sport page unreachable, skipping", "sport", sport, "error", err)
			continue
		}
		links, err := s.collectLinks(ctx, "a")
		if err != nil {
			slog.Warn("Could not read sport page, skipping", "sport", sport, "error", err)
			continue
		}
		for _, l := range links {
			if contains(s.cfg.Countries, l.Text) {
				data[sport][l.Text] = s.absoluteURL(l.Href)
			}
		}
	}
	return data, nil
}

// ScrapeLeagues visits each country page and keeps the configured leagues.
// League anchors carry a match count suffix, e.g. "Premier League (20)".
func (s *Scraper) ScrapeLeagues(ctx context.Context, countries map[string]map[string]string) (catalog.Catalog, error) {
	cat := catalog.Catalog{}
	for sport, byCountry := range countries {
		cat[sport] = map[string]map[string]string{}
		for country, url := range byCountry {
			slog.Info("Scraping leagues", "sport", sport, "country", country, "url", url)
			cat[sport][country] = map[string]string{}
			if err := s.navigate(ctx, url); err != nil {
				slog.Warn("Country page unreachable, skipping", "sport", sport, "country", country, "error", err)
				continue
			}
			links, err := s.collectLinks(ctx, "main a")
			if err != nil {
				slog.Warn("Could not read country page, skipping", "sport", sport, "country", country, "error", err)
				continue
			}
			for _, l := range links {
				league, ok := stripLeagueCount(l.Text)
				if !ok || !contains(s.cfg.Leagues, league) {
					continue
				}
				cat[sport][country][league] = s.absoluteURL(l.Href)
			}
		}
	}
	return cat, nil
}

// stripLeagueCount turns "Premier League (20)" into "Premier League".
// Anchors without a count are not league links.
func stripLeagueCount(text string) (string, bool) {
	open := strings.Index(text, "(")
	if open < 0 || !strings.Contains(text[open:], ")") {
		return "", false
	}
	return strings.TrimSpace(text[:open]), true
}

func contains(allow []string, s string) bool {
	for _, a := range allow {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

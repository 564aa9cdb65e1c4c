package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"allusion/internal/pkg/catalog"
	"allusion/internal/pkg/config"
	"allusion/internal/pkg/logging"
	"allusion/internal/scraper"
)

// catalog refreshes the sport/country/league JSON cache files.
func main() {
	var (
		configPath string
		reload     string
	)
	flag.StringVar(&configPath, "config", "configs/local.yaml", "Path to config file")
	flag.StringVar(&reload, "reload", catalog.ReloadAll, "Catalog level to rescrape: all, sports, countries or leagues")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logging.SetupLogger(&cfg.Logging, "catalog"); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping catalog refresh")
		cancel()
	}()

	scr, err := scraper.New(ctx, &cfg.Scraper)
	if err != nil {
		log.Fatalf("Failed to start scraper: %v", err)
	}
	defer scr.Close()

	manager := catalog.NewManager(scr, catalog.Files{
		Sports:    cfg.Scraper.SportsFile,
		Countries: cfg.Scraper.CountriesFile,
		Leagues:   cfg.Scraper.LeaguesFile,
	}, reload)

	cat, err := manager.Resolve(ctx)
	if err != nil {
		log.Fatalf("Failed to refresh catalog: %v", err)
	}

	slog.Info("Catalog refreshed",
		"sports", len(cat),
		"leagues", len(cat.Leagues()),
		"sports_file", cfg.Scraper.SportsFile,
		"countries_file", cfg.Scraper.CountriesFile,
		"leagues_file", cfg.Scraper.LeaguesFile)
}

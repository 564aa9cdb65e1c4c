package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"allusion/internal/collect"
	"allusion/internal/notify"
	"allusion/internal/odds"
	"allusion/internal/pkg/catalog"
	"allusion/internal/pkg/config"
	"allusion/internal/pkg/export"
	"allusion/internal/pkg/health"
	"allusion/internal/pkg/logging"
	"allusion/internal/pkg/storage"
	"allusion/internal/scraper"
)

func main() {
	var configPath, replayWindow string
	flag.StringVar(&configPath, "config", "configs/local.yaml", "Path to config file")
	flag.StringVar(&replayWindow, "replay", "", "Recompute arbitrage from stored observations over this window (e.g. 24h) instead of scraping")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logging.SetupLogger(&cfg.Logging, "scanner"); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping scanner")
		cancel()
	}()

	var store *storage.PostgresStorage
	if cfg.Postgres.DSN != "" {
		store, err = storage.NewPostgresStorage(&cfg.Postgres)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer store.Close()
	}

	if replayWindow != "" {
		window, err := time.ParseDuration(replayWindow)
		if err != nil {
			log.Fatalf("Invalid replay window: %v", err)
		}
		if store == nil {
			log.Fatalf("Replay requires a postgres DSN")
		}
		runReplay(ctx, cfg, store, window)
		return
	}

	scr, err := scraper.New(ctx, &cfg.Scraper)
	if err != nil {
		log.Fatalf("Failed to start scraper: %v", err)
	}
	defer scr.Close()

	var notifier *notify.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		notifier = notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	statusStore := &health.Store{}
	if cfg.Health.Port > 0 {
		var history health.ArbitrageHistory
		if store != nil {
			history = store
		}
		health.Run(ctx, health.AddrFor(cfg.Health.Port), "scanner", statusStore, history, cfg.Health.ReadHeaderTimeoutDuration())
	}

	manager := catalog.NewManager(scr, catalog.Files{
		Sports:    cfg.Scraper.SportsFile,
		Countries: cfg.Scraper.CountriesFile,
		Leagues:   cfg.Scraper.LeaguesFile,
	}, cfg.Scraper.ReloadFileData)

	cat, err := manager.Resolve(ctx)
	if err != nil {
		log.Fatalf("Failed to resolve catalog: %v", err)
	}
	slog.Info("Catalog resolved", "leagues", len(cat.Leagues()))

	pipeline := collect.NewPipeline(scr, cfg.Scanner.Workers)
	interval := cfg.Scanner.IntervalDuration()

	for {
		runCycle(ctx, cfg, pipeline, cat, store, notifier, statusStore)

		if interval <= 0 {
			slog.Info("Single-cycle run complete")
			return
		}
		select {
		case <-ctx.Done():
			slog.Info("Scanner stopped")
			return
		case <-time.After(interval):
		}
	}
}

func runCycle(
	ctx context.Context,
	cfg *config.Config,
	pipeline *collect.Pipeline,
	cat catalog.Catalog,
	store *storage.PostgresStorage,
	notifier *notify.TelegramNotifier,
	statusStore *health.Store,
) {
	start := time.Now()
	observations := pipeline.Collect(ctx, cat)
	slog.Info("Collection cycle finished", "observations", len(observations), "took", time.Since(start))

	best, arbs, diags := odds.Scan(observations, cfg.Scraper.TwoWaySports)
	for _, d := range diags {
		slog.Warn("Data quality problem during arbitrage scan", "error", d)
	}
	slog.Info("Scan complete", "matches", len(best), "arbitrage", len(arbs))

	statusStore.Update(len(observations), len(best), arbs)

	if store != nil {
		if err := store.StoreObservations(ctx, observations); err != nil {
			slog.Error("Failed to store observations", "error", err)
		}
		for i := range arbs {
			if err := store.StoreArbitrage(ctx, &arbs[i]); err != nil {
				slog.Error("Failed to store arbitrage row", "match", arbs[i].Match, "error", err)
			}
		}
	}

	if cfg.Scanner.ExportFile != "" {
		if err := export.NewSnapshot(observations, best, arbs).WriteFile(cfg.Scanner.ExportFile); err != nil {
			slog.Error("Failed to export snapshot", "error", err)
		}
	}

	notifier.NotifyArbitrage(arbs)
}

// runReplay recomputes best odds and arbitrage from stored observations
// instead of scraping, so past cycles can be re-examined offline.
func runReplay(ctx context.Context, cfg *config.Config, store storage.ObservationStorage, window time.Duration) {
	observations, err := store.GetObservationsSince(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		slog.Error("Failed to read stored observations", "error", err)
		return
	}
	slog.Info("Replaying stored observations", "window", window, "observations", len(observations))

	best, arbs, diags := odds.Scan(observations, cfg.Scraper.TwoWaySports)
	for _, d := range diags {
		slog.Warn("Data quality problem during arbitrage scan", "error", d)
	}
	slog.Info("Replay complete", "matches", len(best), "arbitrage", len(arbs))

	if cfg.Scanner.ExportFile != "" {
		if err := export.NewSnapshot(observations, best, arbs).WriteFile(cfg.Scanner.ExportFile); err != nil {
			slog.Error("Failed to export snapshot", "error", err)
		}
	}
}

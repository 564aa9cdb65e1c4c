package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Postgres PostgresConfig `yaml:"postgres"`
	Telegram TelegramConfig `yaml:"telegram"`
	Health   HealthConfig   `yaml:"health"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ScraperConfig struct {
	BaseURL    string `yaml:"base_url"` // default https://www.oddsportal.com
	Headless   bool   `yaml:"headless"`
	UserAgent  string `yaml:"user_agent"`
	NavTimeout string `yaml:"nav_timeout"` // per-page navigation timeout, e.g. "45s"

	SportsFile    string `yaml:"sports_file"`
	CountriesFile string `yaml:"countries_file"`
	LeaguesFile   string `yaml:"leagues_file"`

	// ReloadFileData forces a rescrape of catalog levels: "all", "sports",
	// "countries" or "leagues". Empty means use cached files when present.
	ReloadFileData string `yaml:"reload_file_data"`

	// Allowlists: only these sports/countries/leagues enter the catalog.
	Sports    []string `yaml:"sports"`
	Countries []string `yaml:"countries"`
	Leagues   []string `yaml:"leagues"`

	// TwoWaySports lists sports whose main market has no draw outcome.
	TwoWaySports []string `yaml:"two_way_sports"`
}

// NavTimeoutDuration parses NavTimeout, defaulting to 45s.
func (c *ScraperConfig) NavTimeoutDuration() time.Duration {
	return parseDuration(c.NavTimeout, 45*time.Second)
}

type ScannerConfig struct {
	Interval   string `yaml:"interval"`    // delay between collection cycles, e.g. "15m"; empty = run once
	Workers    int    `yaml:"workers"`     // concurrent league fetches, default 1
	ExportFile string `yaml:"export_file"` // JSON snapshot path, empty disables export
}

// IntervalDuration parses Interval. Zero means run a single cycle and exit.
func (c *ScannerConfig) IntervalDuration() time.Duration {
	return parseDuration(c.Interval, 0)
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"` // empty disables persistence
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"` // empty disables alerts
	ChatID   int64  `yaml:"chat_id"`
}

type HealthConfig struct {
	Port              int    `yaml:"port"` // 0 disables the status server
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
}

// ReadHeaderTimeoutDuration parses ReadHeaderTimeout, defaulting to 5s.
func (c *HealthConfig) ReadHeaderTimeoutDuration() time.Duration {
	return parseDuration(c.ReadHeaderTimeout, 5*time.Second)
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional JSON log file
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"scraper.nav_timeout", c.Scraper.NavTimeout},
		{"scanner.interval", c.Scanner.Interval},
		{"health.read_header_timeout", c.Health.ReadHeaderTimeout},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := time.ParseDuration(f.value); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://www.oddsportal.com"
	}
	if c.Scraper.SportsFile == "" {
		c.Scraper.SportsFile = "sports.json"
	}
	if c.Scraper.CountriesFile == "" {
		c.Scraper.CountriesFile = "countries.json"
	}
	if c.Scraper.LeaguesFile == "" {
		c.Scraper.LeaguesFile = "leagues.json"
	}
	if c.Scanner.Workers < 1 {
		c.Scanner.Workers = 1
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

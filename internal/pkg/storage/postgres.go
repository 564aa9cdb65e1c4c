package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"allusion/internal/pkg/config"
	"allusion/internal/pkg/models"
)

// Ensure PostgresStorage implements both storage interfaces.
var (
	_ ObservationStorage = (*PostgresStorage)(nil)
	_ ArbitrageStorage   = (*PostgresStorage)(nil)
)

// PostgresStorage keeps observations and arbitrage rows in PostgreSQL.
// Odds maps are stored as JSONB so two-way and three-way markets share one
// schema without positional columns.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(cfg *config.PostgresConfig) (*PostgresStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL storage initialized")
	return s, nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS observations (
		id SERIAL PRIMARY KEY,
		sport VARCHAR(100) NOT NULL,
		country VARCHAR(100) NOT NULL,
		league VARCHAR(200) NOT NULL,
		match_name VARCHAR(500) NOT NULL,
		home VARCHAR(200) NOT NULL,
		away VARCHAR(200) NOT NULL,
		match_time TIMESTAMP,
		update_time TIMESTAMP NOT NULL,
		book VARCHAR(100) NOT NULL,
		odds JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_observations_league_match ON observations(league, match_name);
	CREATE INDEX IF NOT EXISTS idx_observations_update_time ON observations(update_time DESC);

	CREATE TABLE IF NOT EXISTS arbitrage_rows (
		id SERIAL PRIMARY KEY,
		sport VARCHAR(100) NOT NULL,
		country VARCHAR(100) NOT NULL,
		league VARCHAR(200) NOT NULL,
		match_name VARCHAR(500) NOT NULL,
		home VARCHAR(200) NOT NULL,
		away VARCHAR(200) NOT NULL,
		match_time TIMESTAMP,
		update_time TIMESTAMP NOT NULL,
		best JSONB NOT NULL,
		reciprocal_sum DECIMAL(10, 6) NOT NULL,
		found_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_arbitrage_rows_found_at ON arbitrage_rows(found_at DESC);
	CREATE INDEX IF NOT EXISTS idx_arbitrage_rows_league_match ON arbitrage_rows(league, match_name);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// StoreObservations appends a batch inside one transaction so a partial
// write never leaves half a scrape behind.
func (s *PostgresStorage) StoreObservations(ctx context.Context, observations []models.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations
			(sport, country, league, match_name, home, away, match_time, update_time, book, odds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range observations {
		o := &observations[i]
		odds, err := json.Marshal(o.Odds)
		if err != nil {
			return fmt.Errorf("failed to marshal odds for %s/%q: %w", o.Book, o.Match, err)
		}
		if _, err := stmt.ExecContext(ctx,
			o.Sport, o.Country, o.League, o.Match, o.Home, o.Away,
			nullableTime(o.MatchTime), o.UpdateTime, o.Book, odds); err != nil {
			return fmt.Errorf("failed to insert observation %s/%q: %w", o.Book, o.Match, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit observations: %w", err)
	}
	slog.Info("Stored observations", "count", len(observations))
	return nil
}

func (s *PostgresStorage) GetObservationsSince(ctx context.Context, cutoff time.Time) ([]models.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sport, country, league, match_name, home, away, match_time, update_time, book, odds
		FROM observations
		WHERE update_time > $1
		ORDER BY id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		var (
			o         models.Observation
			matchTime sql.NullTime
			odds      []byte
		)
		if err := rows.Scan(&o.Sport, &o.Country, &o.League, &o.Match, &o.Home, &o.Away,
			&matchTime, &o.UpdateTime, &o.Book, &odds); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		if matchTime.Valid {
			o.MatchTime = matchTime.Time
		}
		if err := json.Unmarshal(odds, &o.Odds); err != nil {
			return nil, fmt.Errorf("failed to parse odds for %s/%q: %w", o.Book, o.Match, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) StoreArbitrage(ctx context.Context, row *models.ArbitrageRow) error {
	best, err := json.Marshal(row.Best)
	if err != nil {
		return fmt.Errorf("failed to marshal best prices for %q: %w", row.Match, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO arbitrage_rows
			(sport, country, league, match_name, home, away, match_time, update_time, best, reciprocal_sum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.Sport, row.Country, row.League, row.Match, row.Home, row.Away,
		nullableTime(row.MatchTime), row.UpdateTime, best, row.ReciprocalSum)
	if err != nil {
		return fmt.Errorf("failed to insert arbitrage row for %q: %w", row.Match, err)
	}
	return nil
}

func (s *PostgresStorage) GetRecentArbitrage(ctx context.Context, cutoff time.Time) ([]models.ArbitrageRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sport, country, league, match_name, home, away, match_time, update_time, best, reciprocal_sum
		FROM arbitrage_rows
		WHERE found_at > $1
		ORDER BY found_at DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query arbitrage rows: %w", err)
	}
	defer rows.Close()

	var out []models.ArbitrageRow
	for rows.Next() {
		var (
			r         models.ArbitrageRow
			matchTime sql.NullTime
			best      []byte
		)
		if err := rows.Scan(&r.Sport, &r.Country, &r.League, &r.Match, &r.Home, &r.Away,
			&matchTime, &r.UpdateTime, &best, &r.ReciprocalSum); err != nil {
			return nil, fmt.Errorf("failed to scan arbitrage row: %w", err)
		}
		if matchTime.Valid {
			r.MatchTime = matchTime.Time
		}
		if err := json.Unmarshal(best, &r.Best); err != nil {
			return nil, fmt.Errorf("failed to parse best prices for %q: %w", r.Match, err)
		}
		r.Arbitrage = true
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

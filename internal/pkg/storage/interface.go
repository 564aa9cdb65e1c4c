package storage

import (
	"context"
	"time"

	"allusion/internal/pkg/models"
)

// ObservationStorage persists raw odds observations.
type ObservationStorage interface {
	// StoreObservations appends a batch of observations.
	StoreObservations(ctx context.Context, observations []models.Observation) error

	// GetObservationsSince reads observations updated after the cutoff,
	// for offline recomputation of best odds and arbitrage.
	GetObservationsSince(ctx context.Context, cutoff time.Time) ([]models.Observation, error)

	// Close closes the database connection.
	Close() error
}

// ArbitrageStorage persists detected arbitrage rows.
type ArbitrageStorage interface {
	// StoreArbitrage saves one detected arbitrage row.
	StoreArbitrage(ctx context.Context, row *models.ArbitrageRow) error

	// GetRecentArbitrage reads arbitrage rows found after the cutoff.
	GetRecentArbitrage(ctx context.Context, cutoff time.Time) ([]models.ArbitrageRow, error)
}

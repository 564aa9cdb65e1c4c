package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"allusion/internal/pkg/models"
)

// Snapshot is one collection cycle's full result.
type Snapshot struct {
	Timestamp         string                `json:"timestamp"`
	TotalObservations int                   `json:"total_observations"`
	TotalMatches      int                   `json:"total_matches"`
	TotalArbitrage    int                   `json:"total_arbitrage"`
	Observations      []models.Observation  `json:"observations"`
	BestOdds          []models.BestOdds     `json:"best_odds"`
	Arbitrage         []models.ArbitrageRow `json:"arbitrage"`
}

// NewSnapshot assembles an export snapshot from one cycle's tables.
func NewSnapshot(observations []models.Observation, best []models.BestOdds, arbs []models.ArbitrageRow) *Snapshot {
	return &Snapshot{
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		TotalObservations: len(observations),
		TotalMatches:      len(best),
		TotalArbitrage:    len(arbs),
		Observations:      observations,
		BestOdds:          best,
		Arbitrage:         arbs,
	}
}

// WriteFile stores the snapshot as indented JSON.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a snapshot written by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &s, nil
}

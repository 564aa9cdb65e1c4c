package export

import (
	"path/filepath"
	"testing"

	"allusion/internal/pkg/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	obs := []models.Observation{{
		Sport: "football", Country: "england", League: "premier league",
		Match: "A - B", Home: "A", Away: "B", Book: "bet365",
		Odds: map[models.Outcome]float64{models.OutcomeHome: 2.1, models.OutcomeAway: 3.4},
	}}
	best := []models.BestOdds{{
		League: "premier league", Match: "A - B",
		Best: map[models.Outcome]models.BestPrice{
			models.OutcomeHome: {Odds: 2.1, Book: "bet365"},
		},
	}}
	arbs := []models.ArbitrageRow{{BestOdds: best[0], ReciprocalSum: 0.97, Arbitrage: true}}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := NewSnapshot(obs, best, arbs).WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.TotalObservations != 1 || got.TotalMatches != 1 || got.TotalArbitrage != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", got.TotalObservations, got.TotalMatches, got.TotalArbitrage)
	}
	if got.Observations[0].Odds[models.OutcomeHome] != 2.1 {
		t.Errorf("home odds = %v, want 2.1", got.Observations[0].Odds[models.OutcomeHome])
	}
	if got.Arbitrage[0].ReciprocalSum != 0.97 {
		t.Errorf("reciprocal_sum = %v, want 0.97", got.Arbitrage[0].ReciprocalSum)
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error for a missing snapshot")
	}
}

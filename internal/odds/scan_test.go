package odds

import (
	"testing"

	"allusion/internal/pkg/models"
)

func TestScan_MixedMarkets(t *testing.T) {
	football := obs("premier league", "A - B", "x", 2.5, 3.0, 4.0) // surebet under 1x2
	tennisX := obs("atp", "C - D", "x", 2.2, 0, 1.5)
	tennisY := obs("atp", "C - D", "y", 1.6, 0, 2.1)
	tennisX.Sport, tennisY.Sport = "tennis", "tennis"

	best, arbs, diags := Scan([]models.Observation{football, tennisX, tennisY}, []string{"tennis"})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(best) != 2 {
		t.Fatalf("got %d best rows, want 2", len(best))
	}
	// Tennis best: home 2.2 (x), away 2.1 (y) -> 1/2.2+1/2.1 = 0.9307 < 1.
	if len(arbs) != 2 {
		t.Fatalf("got %d arbitrage rows, want 2: %+v", len(arbs), arbs)
	}
	if arbs[0].Match != "A - B" || arbs[1].Match != "C - D" {
		t.Errorf("arbitrage rows out of order: %q, %q", arbs[0].Match, arbs[1].Match)
	}
	if _, ok := arbs[1].Best[models.OutcomeDraw]; ok {
		t.Errorf("tennis row carries a draw price: %+v", arbs[1].Best)
	}
}

func TestScan_EmptyInput(t *testing.T) {
	best, arbs, diags := Scan(nil, nil)
	if len(best) != 0 || len(arbs) != 0 || len(diags) != 0 {
		t.Errorf("Scan(nil) = %d/%d/%d rows, want all empty", len(best), len(arbs), len(diags))
	}
}

package odds

import (
	"math"
	"testing"

	"allusion/internal/pkg/models"
)

func bestRow(match string, home, draw, away float64) models.BestOdds {
	best := map[models.Outcome]models.BestPrice{}
	if home != 0 {
		best[models.OutcomeHome] = models.BestPrice{Odds: home, Book: "x"}
	}
	if draw != 0 {
		best[models.OutcomeDraw] = models.BestPrice{Odds: draw, Book: "y"}
	}
	if away != 0 {
		best[models.OutcomeAway] = models.BestPrice{Odds: away, Book: "z"}
	}
	return models.BestOdds{
		Sport:  "football",
		League: "premier league",
		Match:  match,
		Best:   best,
	}
}

func TestFindArbitrage_ReciprocalSum(t *testing.T) {
	tests := []struct {
		name             string
		home, draw, away float64
		wantKept         bool
		wantSum          float64
	}{
		{"surebet", 2.5, 3.0, 4.0, true, 1/2.5 + 1/3.0 + 1/4.0},
		{"no edge", 1.5, 3.0, 4.0, false, 0},
		{"exactly one", 2.0, 4.0, 4.0, false, 0},
		{"two-outcome surebet", 2.2, 0, 2.1, true, 1/2.2 + 1/2.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, diags := FindArbitrage([]models.BestOdds{bestRow("A - B", tt.home, tt.draw, tt.away)}, models.ThreeWay)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if kept := len(rows) == 1; kept != tt.wantKept {
				t.Fatalf("kept = %v, want %v", kept, tt.wantKept)
			}
			if !tt.wantKept {
				return
			}
			if got := rows[0].ReciprocalSum; math.Abs(got-tt.wantSum) > 1e-12 {
				t.Errorf("reciprocal_sum = %v, want %v", got, tt.wantSum)
			}
			if !rows[0].Arbitrage {
				t.Errorf("kept row not flagged as arbitrage")
			}
		})
	}
}

func TestFindArbitrage_ZeroOddsIsDiagnosticNotInf(t *testing.T) {
	row := bestRow("A - B", 2.5, 3.0, 4.0)
	row.Best[models.OutcomeDraw] = models.BestPrice{Odds: 0, Book: "y"}

	rows, diags := FindArbitrage([]models.BestOdds{row}, models.ThreeWay)
	if len(rows) != 0 {
		t.Errorf("row with zero odds kept: %+v", rows)
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
}

func TestFindArbitrage_BadRowDoesNotAbortBatch(t *testing.T) {
	bad := bestRow("A - B", 2.5, 3.0, 4.0)
	bad.Best[models.OutcomeHome] = models.BestPrice{Odds: -1, Book: "x"}
	good := bestRow("C - D", 2.5, 3.0, 4.0)

	rows, diags := FindArbitrage([]models.BestOdds{bad, good}, models.ThreeWay)
	if len(rows) != 1 || rows[0].Match != "C - D" {
		t.Errorf("good row lost alongside a bad one: %+v", rows)
	}
	if len(diags) != 1 {
		t.Errorf("got %d diagnostics, want 1", len(diags))
	}
}

func TestFindArbitrage_IgnoresUndeclaredOutcomes(t *testing.T) {
	// A draw price on the row must not move the sum under a two-way market.
	row := bestRow("A - B", 2.2, 5.0, 2.1)
	rows, diags := FindArbitrage([]models.BestOdds{row}, models.TwoWay)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := 1/2.2 + 1/2.1
	if got := rows[0].ReciprocalSum; math.Abs(got-want) > 1e-12 {
		t.Errorf("reciprocal_sum = %v, want %v (draw leaked into a two-way sum)", got, want)
	}
}

func TestFindArbitrage_PreservesInputOrder(t *testing.T) {
	rows, _ := FindArbitrage([]models.BestOdds{
		bestRow("A - B", 2.5, 3.0, 4.0),
		bestRow("C - D", 1.2, 3.0, 4.0), // not an arb
		bestRow("E - F", 3.0, 4.0, 5.0),
	}, models.ThreeWay)
	if len(rows) != 2 || rows[0].Match != "A - B" || rows[1].Match != "E - F" {
		t.Errorf("order not preserved: %+v", rows)
	}
}

func TestFindArbitrage_RowWithNoPricesSkipped(t *testing.T) {
	rows, diags := FindArbitrage([]models.BestOdds{{Match: "A - B", Best: map[models.Outcome]models.BestPrice{}}}, models.ThreeWay)
	if len(rows) != 0 || len(diags) != 0 {
		t.Errorf("empty row should be silently skipped, got rows=%d diags=%d", len(rows), len(diags))
	}
}

func TestProfitAndStakes(t *testing.T) {
	arbs, _ := FindArbitrage([]models.BestOdds{bestRow("A - B", 2.5, 3.0, 4.0)}, models.ThreeWay)
	if len(arbs) != 1 {
		t.Fatal("expected one arbitrage row")
	}
	arb := arbs[0]

	wantProfit := 1/arb.ReciprocalSum - 1
	if got := Profit(arb); math.Abs(got-wantProfit) > 1e-12 {
		t.Errorf("Profit = %v, want %v", got, wantProfit)
	}

	stakes := Stakes(arb, 100)
	var total, payout float64
	for outcome, stake := range stakes {
		total += stake
		p := stake * arb.Best[outcome].Odds
		if payout == 0 {
			payout = p
		} else if math.Abs(p-payout) > 1e-9 {
			t.Errorf("uneven payout for %s: %v vs %v", outcome, p, payout)
		}
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("stakes sum to %v, want the full bankroll", total)
	}
	if payout <= 100 {
		t.Errorf("payout %v does not beat the bankroll", payout)
	}
}

package odds

import (
	"fmt"

	"allusion/internal/pkg/models"
)

// FindArbitrage annotates each BestOdds row with its reciprocal-odds sum
// and keeps the rows where the sum is below 1 (a surebet: the implied
// probabilities across the best prices do not cover certainty).
//
// The sum runs over the market's declared outcomes that are present on the
// row, so a two-outcome sport works against TwoWay and extra fields on the
// row can never shift the result. A non-positive price is invalid input:
// the row is skipped and the problem reported on the returned diagnostics
// slice instead of turning into Inf. Input order is preserved.
func FindArbitrage(rows []models.BestOdds, market models.Market) ([]models.ArbitrageRow, []error) {
	var (
		found []models.ArbitrageRow
		diags []error
	)

	for i := range rows {
		row := rows[i]
		sum, priced := 0.0, 0

		invalid := false
		for _, outcome := range market.Outcomes {
			price, ok := row.Best[outcome]
			if !ok {
				continue
			}
			if price.Odds <= 0 {
				diags = append(diags, fmt.Errorf("match %q league %q: non-positive %s odds %v from %s",
					row.Match, row.League, outcome, price.Odds, price.Book))
				invalid = true
				break
			}
			sum += 1 / price.Odds
			priced++
		}
		if invalid || priced == 0 {
			continue
		}

		arb := models.ArbitrageRow{
			BestOdds:      row,
			ReciprocalSum: sum,
			Arbitrage:     sum < 1,
		}
		if arb.Arbitrage {
			found = append(found, arb)
		}
	}

	return found, diags
}

// Profit returns the guaranteed return per unit staked for an arbitrage
// row, e.g. 0.017 for a reciprocal sum of 0.9833.
func Profit(row models.ArbitrageRow) float64 {
	if row.ReciprocalSum <= 0 {
		return 0
	}
	return 1/row.ReciprocalSum - 1
}

// Stakes splits a bankroll across the row's outcomes so every outcome pays
// the same amount. Returns the stake per outcome keyed like row.Best.
func Stakes(row models.ArbitrageRow, bankroll float64) map[models.Outcome]float64 {
	if row.ReciprocalSum <= 0 || bankroll <= 0 {
		return nil
	}
	stakes := make(map[models.Outcome]float64, len(row.Best))
	for outcome, price := range row.Best {
		if price.Odds <= 0 {
			continue
		}
		stakes[outcome] = bankroll * (1 / price.Odds) / row.ReciprocalSum
	}
	return stakes
}

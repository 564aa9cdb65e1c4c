package odds

import (
	"allusion/internal/pkg/models"
)

// Scan runs the full engine over one cycle's observations: aggregate to
// best odds, then flag arbitrage row by row under the market declared for
// each row's sport. Row order follows the aggregated table.
func Scan(observations []models.Observation, twoWaySports []string) ([]models.BestOdds, []models.ArbitrageRow, []error) {
	best := BestOddsTable(observations)

	var (
		arbs  []models.ArbitrageRow
		diags []error
	)
	for i := range best {
		market := models.MarketFor(best[i].Sport, twoWaySports)
		found, d := FindArbitrage(best[i:i+1], market)
		arbs = append(arbs, found...)
		diags = append(diags, d...)
	}
	return best, arbs, diags
}

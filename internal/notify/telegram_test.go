package notify

import (
	"strings"
	"testing"
	"time"

	"allusion/internal/pkg/models"
)

func TestFormatArbitrage(t *testing.T) {
	row := &models.ArbitrageRow{
		BestOdds: models.BestOdds{
			Sport:     "football",
			Country:   "england",
			League:    "premier league",
			Match:     "Arsenal - Chelsea",
			MatchTime: time.Date(2026, 9, 7, 18, 30, 0, 0, time.UTC),
			Best: map[models.Outcome]models.BestPrice{
				models.OutcomeHome: {Odds: 2.5, Book: "bet365"},
				models.OutcomeDraw: {Odds: 3.0, Book: "pinnacle"},
				models.OutcomeAway: {Odds: 4.0, Book: "unibet"},
			},
		},
		ReciprocalSum: 1/2.5 + 1/3.0 + 1/4.0,
		Arbitrage:     true,
	}

	msg := formatArbitrage(row)
	for _, want := range []string{
		"Arsenal - Chelsea",
		"premier league",
		"2.50</b> @ bet365",
		"3.00</b> @ pinnacle",
		"4.00</b> @ unibet",
		"0.9833",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	// Outcomes are listed in a stable order.
	if strings.Index(msg, "away:") > strings.Index(msg, "draw:") ||
		strings.Index(msg, "draw:") > strings.Index(msg, "home:") {
		t.Errorf("outcomes not in sorted order:\n%s", msg)
	}
}

func TestNotifyArbitrage_NilNotifierIsSafe(t *testing.T) {
	var n *TelegramNotifier
	n.NotifyArbitrage([]models.ArbitrageRow{{}}) // must not panic
}

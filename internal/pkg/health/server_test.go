package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"allusion/internal/pkg/models"
)

type fakeHistory struct {
	rows   []models.ArbitrageRow
	cutoff time.Time
}

func (f *fakeHistory) GetRecentArbitrage(_ context.Context, cutoff time.Time) ([]models.ArbitrageRow, error) {
	f.cutoff = cutoff
	return f.rows, nil
}

func TestArbitrageHistoryEndpoint(t *testing.T) {
	history := &fakeHistory{rows: []models.ArbitrageRow{
		{
			BestOdds: models.BestOdds{
				Match: "Arsenal - Chelsea",
				Best: map[models.Outcome]models.BestPrice{
					models.OutcomeHome: {Odds: 2.1, Book: "bet365"},
				},
			},
			ReciprocalSum: 0.97,
			Arbitrage:     true,
		},
	}}
	mux := newMux("scanner", &Store{}, history)

	req := httptest.NewRequest("GET", "/arbitrage/history?since=2h", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rows []models.ArbitrageRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 1 || rows[0].Match != "Arsenal - Chelsea" {
		t.Errorf("rows = %+v, want the stored arbitrage row", rows)
	}

	age := time.Since(history.cutoff)
	if age < time.Hour+59*time.Minute || age > 2*time.Hour+time.Minute {
		t.Errorf("cutoff is %v old, want about 2h", age)
	}
}

func TestArbitrageHistoryEndpoint_BadSince(t *testing.T) {
	mux := newMux("scanner", &Store{}, &fakeHistory{})

	req := httptest.NewRequest("GET", "/arbitrage/history?since=yesterday", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestArbitrageHistoryEndpoint_NoStorage(t *testing.T) {
	mux := newMux("scanner", &Store{}, nil)

	req := httptest.NewRequest("GET", "/arbitrage/history", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	store := &Store{}
	store.Update(12, 4, []models.ArbitrageRow{{ReciprocalSum: 0.95, Arbitrage: true}})
	mux := newMux("scanner", store, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["observations"] != float64(12) || body["matches"] != float64(4) || body["arbitrage"] != float64(1) {
		t.Errorf("health body = %v", body)
	}
}

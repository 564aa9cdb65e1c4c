package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"allusion/internal/pkg/models"
)

// ArbitrageHistory reads persisted arbitrage rows for the history endpoint.
type ArbitrageHistory interface {
	GetRecentArbitrage(ctx context.Context, cutoff time.Time) ([]models.ArbitrageRow, error)
}

// Store holds the latest scan results for the status endpoints.
type Store struct {
	mu           sync.RWMutex
	lastScan     time.Time
	observations int
	matches      int
	arbitrage    []models.ArbitrageRow
}

// Update replaces the stored results after a collection cycle.
func (s *Store) Update(observations, matches int, arbitrage []models.ArbitrageRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScan = time.Now().UTC()
	s.observations = observations
	s.matches = matches
	s.arbitrage = append([]models.ArbitrageRow(nil), arbitrage...)
}

func (s *Store) snapshot() (time.Time, int, int, []models.ArbitrageRow) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScan, s.observations, s.matches, s.arbitrage
}

// Run starts the status HTTP server and shuts it down when ctx is cancelled.
// history may be nil when no persistent storage is configured; the history
// endpoint then reports 404.
func Run(ctx context.Context, addr, service string, store *Store, history ArbitrageHistory, readHeaderTimeout time.Duration) {
	mux := newMux(service, store, history)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("Status server listening", "service", service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Status server error", "service", service, "error", err)
		}
	}()
}

func newMux(service string, store *Store, history ArbitrageHistory) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "pong")
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		lastScan, observations, matches, arbs := store.snapshot()
		writeJSON(w, map[string]any{
			"service":      service,
			"last_scan":    lastScan,
			"observations": observations,
			"matches":      matches,
			"arbitrage":    len(arbs),
		})
	})

	mux.HandleFunc("/arbitrage", func(w http.ResponseWriter, _ *http.Request) {
		_, _, _, arbs := store.snapshot()
		writeJSON(w, arbs)
	})

	mux.HandleFunc("/arbitrage/history", func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			http.Error(w, "no persistent storage configured", http.StatusNotFound)
			return
		}
		since := 24 * time.Hour
		if raw := r.URL.Query().Get("since"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 {
				http.Error(w, "invalid since parameter", http.StatusBadRequest)
				return
			}
			since = d
		}
		rows, err := history.GetRecentArbitrage(r.Context(), time.Now().UTC().Add(-since))
		if err != nil {
			slog.Error("Failed to read arbitrage history", "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode status response", "error", err)
	}
}

// AddrFor formats a listen address from a port.
func AddrFor(port int) string {
	return fmt.Sprintf(":%d", port)
}

package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"price-pact/domain"
	"price-pact/observability"
	"price-pact/repositories"
)

// StartDebugServer exposes the operational surface on its own port:
// live room snapshots, runtime stats and the audit ledger. JSON only;
// the viewer tool renders it.
func StartDebugServer(
	log *slog.Logger,
	port int,
	rooms func() []domain.Room,
	stats func() observability.Snapshot,
	ledger repositories.ILedger,
) {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, rooms())
	})

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stats())
	})

	mux.HandleFunc("/debug/ledger", func(w http.ResponseWriter, r *http.Request) {
		records, err := ledger.Recent(100)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, records)
	})

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		log.Info("Starting debug server", "address", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Debug server stopped", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

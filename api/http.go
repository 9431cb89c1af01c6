// Package api exposes the training run over HTTP: health and status
// endpoints, the progress rows recorded so far, and the prometheus
// metrics handler.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/absmach/coach/pkg/ledger"
	"github.com/absmach/coach/trainer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(svc trainer.Service, ldg ledger.Ledger, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		status, err := svc.Status(req.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, logger)

			return
		}
		writeJSON(w, http.StatusOK, status, logger)
	})

	r.Get("/progress", func(w http.ResponseWriter, _ *http.Request) {
		rows := []ledger.Row{}
		if ldg != nil {
			rows = ldg.Rows()
		}
		writeJSON(w, http.StatusOK, rows, logger)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, code int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode response", slog.Any("error", err))
	}
}

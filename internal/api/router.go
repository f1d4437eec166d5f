package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarloweDigital/Stature/internal/events"
	"github.com/MarloweDigital/Stature/internal/oracle"
	"github.com/MarloweDigital/Stature/internal/scoring"
	"github.com/MarloweDigital/Stature/internal/store"
)

func NewRouter(s store.Store, e events.Client, o oracle.Client, engine *scoring.Engine, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	analyses := NewAnalysesHandler(s, e, o, engine, logger)
	explain := NewExplainHandler(s)
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware)

		r.Post("/analyses", analyses.Create)
		r.Get("/analyses", analyses.List)
		r.Get("/analyses/{id}", analyses.Get)
		r.Get("/subjects/{id}/scores", analyses.SubjectScores)

		r.Get("/scoring/explain/{analysis_id}", explain.Explain)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/stats", admin.Stats)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

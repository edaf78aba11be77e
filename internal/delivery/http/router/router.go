package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/webcrawler/internal/delivery/http/handler"
	"github.com/user/webcrawler/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/api/health", h.HandleHealthCheck)
	r.Get("/api/stats", h.HandleStats)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}

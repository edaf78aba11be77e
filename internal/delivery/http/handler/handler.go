package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/webcrawler/internal/delivery/http/response"
	"github.com/user/webcrawler/internal/usecase"
)

// Handler exposes the read-only control surface of a running crawl.
type Handler struct {
	crawler usecase.Crawler
}

func NewHandler(crawler usecase.Crawler) *Handler {
	return &Handler{
		crawler: crawler,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.crawler.Stats(r.Context())
	if err != nil {
		slog.Error("Failed to collect crawl stats", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.StatsResponse{
		PagesCrawled:  stats.PagesCrawled,
		RobotsBlocked: stats.RobotsBlocked,
		FetchErrors:   stats.FetchErrors,
		Enqueued:      stats.Enqueued,
		FrontierSize:  stats.FrontierSize,
		VisitedSize:   stats.VisitedSize,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}

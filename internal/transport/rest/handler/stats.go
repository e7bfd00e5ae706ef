package handler

import (
	"net/http"
	"strconv"

	"drawdash/internal/service"
	"drawdash/internal/transport/rest/middleware"
)

// StatsHandler serves per-account counters and the global leaderboard
type StatsHandler struct {
	statsSvc *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// MyStats handles GET /v1/users/me/stats
func (h *StatsHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	stats, err := h.statsSvc.ReadStats(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "stats not found")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Leaderboard handles GET /v1/leaderboard?limit=N
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.statsSvc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

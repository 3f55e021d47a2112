package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gameplatform/internal/cache"
	"gameplatform/internal/model"
)

const defaultLeaderboardLimit = 10

// LeaderboardHandler reads the per-game-type win ranking.
type LeaderboardHandler struct {
	leaderboard cache.LeaderboardCache
}

func NewLeaderboardHandler(leaderboard cache.LeaderboardCache) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Top handles GET /v1/leaderboard/{gameType}.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	gt := model.GameType(mux.Vars(r)["gameType"])
	if !gt.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown game type"})
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.leaderboard.Top(r.Context(), gt, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "leaderboard unavailable"})
		return
	}
	if entries == nil {
		entries = []cache.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gameType": gt, "entries": entries})
}

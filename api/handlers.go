package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"memory-duel-server/config"
	"memory-duel-server/storage"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler holds dependencies for the read-only HTTP API.
type Handler struct {
	Config *config.Config
	Store  storage.HistoryStore
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(cfg *config.Config, store storage.HistoryStore) *Handler {
	return &Handler{
		Config: cfg,
		Store:  store,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
// Returns true when the request was a preflight and has been answered.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// RecentMatches returns the most recent finished games as JSON.
// GET /api/matches?limit=N
func (h *Handler) RecentMatches(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Store == nil {
		http.Error(w, "match history is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := h.Store.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("listing match history", "tag", "api", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []storage.MatchRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"matches": records}); err != nil {
		slog.Error("encoding match history", "tag", "api", "err", err)
	}
}

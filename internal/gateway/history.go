package gateway

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/toolclaw/internal/memory"
)

const defaultHistoryLimit = 20

// handleHistory returns the most recent execution records, oldest first.
// The limit query parameter defaults to 20; 0 returns everything.
func (g *Gateway) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agent == nil {
			writeError(w, http.StatusServiceUnavailable, "agent unavailable")
			return
		}

		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		records, err := g.agent.History(r.Context(), limit)
		if err != nil {
			g.logger.Error("history read failed", "error", err)
			writeError(w, http.StatusInternalServerError, "history unavailable")
			return
		}
		if records == nil {
			records = []memory.ExecutionRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// handleHistoryRecord returns one execution record by ID.
func (g *Gateway) handleHistoryRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agent == nil {
			writeError(w, http.StatusServiceUnavailable, "agent unavailable")
			return
		}

		rec, err := g.agent.HistoryStore().Get(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, memory.ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "record not found")
		case err != nil:
			g.logger.Error("history read failed", "error", err)
			writeError(w, http.StatusInternalServerError, "history unavailable")
		default:
			writeJSON(w, http.StatusOK, rec)
		}
	}
}

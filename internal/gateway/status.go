package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/tool"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime time.Duration         `json:"uptime_seconds"`
	Agent  *agent.Stats          `json:"agent,omitempty"`
	Tools  map[string]tool.Stats `json:"tools"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Uptime: time.Since(g.startedAt).Truncate(time.Second) / time.Second,
			Tools:  map[string]tool.Stats{},
		}
		if g.registry != nil {
			resp.Tools = g.registry.Snapshot()
		}
		if g.agent != nil {
			stats, err := g.agent.Stats(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, "history unavailable")
				return
			}
			resp.Agent = &stats
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

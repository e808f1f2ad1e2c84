package gateway

import (
	"context"
	"net/http"
	"time"
)

// healthTimeout bounds the module checks run by GET /health.
const healthTimeout = 2 * time.Second

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string            `json:"status"` // "ok" or "degraded"
	Tools   int               `json:"tools"`
	Modules map[string]string `json:"modules,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when tools are registered and every module health check
// passes, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}
		healthy := true
		if g.registry != nil {
			resp.Tools = len(g.registry.Names())
		}
		if resp.Tools == 0 {
			healthy = false
		}

		if g.health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			checks := g.health.Health(ctx)
			if len(checks) > 0 {
				resp.Modules = make(map[string]string, len(checks))
			}
			for id, err := range checks {
				if err != nil {
					resp.Modules[string(id)] = err.Error()
					healthy = false
					continue
				}
				resp.Modules[string(id)] = "ok"
			}
		}

		status := http.StatusOK
		if !healthy {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

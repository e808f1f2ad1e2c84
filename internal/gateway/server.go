package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if g.metrics != nil {
		r.Use(requestMetrics(g.metrics))
	}

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	if g.metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.metrics.Handler())
	}

	// Webhooks carry their own HMAC auth per source.
	r.Post("/webhooks/{source}", g.webhooks.ServeHTTP)

	// API endpoints, auth required. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.audit, g.limiter))
			r.Use(middleware.RequestSize(int64(g.config.MaxBodySize)))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Get("/tools", g.handleListTools())
				r.Post("/tools/{name}/call", g.handleCallTool())
				r.Post("/run", g.handleRun())
				r.Get("/history", g.handleHistory())
				r.Get("/history/{id}", g.handleHistoryRecord())
			})
		})
	}

	return r
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

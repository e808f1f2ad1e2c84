package gateway

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/tool"
)

// toolJSON is a registered tool with its statistics.
type toolJSON struct {
	tool.Descriptor
	Stats tool.Stats `json:"stats"`
}

// handleListTools returns every registered tool as JSON.
func (g *Gateway) handleListTools() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := []toolJSON{}
		if g.registry != nil {
			for _, d := range g.registry.Descriptors() {
				s, _ := g.registry.Stats(d.Name)
				out = append(out, toolJSON{Descriptor: d, Stats: s})
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleCallTool dispatches one tool with the JSON object in the request
// body as arguments. Tool failures are reported in the body with status
// 200; only an unknown tool or a rate limit change the status code.
func (g *Gateway) handleCallTool() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.registry == nil {
			writeError(w, http.StatusServiceUnavailable, "tool registry unavailable")
			return
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		args := tool.Args{}
		if len(data) > 0 {
			if err := security.ValidatePayload(data, g.config.MaxBodySize, security.DefaultMaxJSONDepth); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := decodeJSON(data, &args); err != nil {
				writeError(w, http.StatusBadRequest, "arguments must be a JSON object")
				return
			}
		}

		out := g.registry.Dispatch(r.Context(), chi.URLParam(r, "name"), args)

		status := http.StatusOK
		switch out.Condition {
		case tool.ConditionNotFound:
			status = http.StatusNotFound
		case tool.ConditionRateLimited:
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, out)
	}
}

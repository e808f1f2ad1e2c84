package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/pkg/plan"
)

// RunRequest is the body of POST /api/run. Without a plan the configured
// planner turns Input into one.
type RunRequest struct {
	Input string     `json:"input"`
	Plan  *plan.Plan `json:"plan,omitempty"`
}

// RunResponse is the JSON response of a finished run.
type RunResponse struct {
	RunID         string           `json:"run_id"`
	State         agent.State      `json:"state"`
	StopReason    agent.StopReason `json:"stop_reason"`
	StepsExecuted int              `json:"steps_executed"`
	Failures      int              `json:"failures"`
	Transcript    string           `json:"transcript"`
	DurationMS    int64            `json:"duration_ms"`
}

func newRunResponse(res agent.Result) RunResponse {
	return RunResponse{
		RunID:         res.RunID,
		State:         res.State,
		StopReason:    res.StopReason,
		StepsExecuted: res.StepsExecuted,
		Failures:      res.Failures(),
		Transcript:    res.Transcript,
		DurationMS:    res.Duration.Milliseconds(),
	}
}

// decodeJSON unmarshals data rejecting unknown fields and trailing data.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// parseRunRequest validates and decodes a run request body.
func parseRunRequest(data []byte, maxSize int) (RunRequest, error) {
	var req RunRequest
	if err := security.ValidatePayload(data, maxSize, security.DefaultMaxJSONDepth); err != nil {
		return req, err
	}
	if err := decodeJSON(data, &req); err != nil {
		return req, err
	}
	if req.Input == "" && req.Plan == nil {
		return req, errors.New("input or plan is required")
	}
	return req, nil
}

// execute runs req on a, using the supplied plan when present.
func execute(ctx context.Context, a *agent.Agent, req RunRequest) (agent.Result, error) {
	if req.Plan != nil {
		return a.Execute(ctx, req.Input, *req.Plan)
	}
	return a.Run(ctx, req.Input)
}

// runErrorStatus maps the errors that prevent a run from starting.
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, security.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, agent.ErrNoPlanner):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// handleRun executes a plan run synchronously and returns its result.
func (g *Gateway) handleRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.agent == nil {
			writeError(w, http.StatusServiceUnavailable, "agent unavailable")
			return
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		req, err := parseRunRequest(data, g.config.MaxBodySize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := execute(r.Context(), g.agent, req)
		if err != nil {
			writeError(w, runErrorStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, newRunResponse(res))
	}
}

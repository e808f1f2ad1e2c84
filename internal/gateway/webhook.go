package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/security"
)

// WebhookHandler processes a validated webhook payload.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte) (any, error)
}

type webhookEntry struct {
	handler WebhookHandler
	secret  string
}

// errBadPayload marks handler errors caused by the request body.
var errBadPayload = errors.New("bad webhook payload")

// WebhookDispatcher routes incoming webhooks to registered handlers with HMAC validation.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]webhookEntry
	logger   *slog.Logger
}

// NewWebhookDispatcher creates a ready-to-use dispatcher.
func NewWebhookDispatcher(logger *slog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers: make(map[string]webhookEntry),
		logger:   logger,
	}
}

// Register adds a handler for the given source with its HMAC secret.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler, secret string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[source] = webhookEntry{handler: h, secret: secret}
}

// ServeHTTP implements http.Handler. It extracts the source from the chi URL
// param, validates the X-Signature-256 header and dispatches to the
// registered handler.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")

	d.mu.RLock()
	entry, ok := d.handlers[source]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("webhook received for unregistered source", "source", source)
		writeError(w, http.StatusNotFound, "unknown webhook source")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, security.DefaultMaxPayloadSize+1))
	if err != nil || int64(len(body)) > security.DefaultMaxPayloadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	if !validateHMAC(body, r.Header.Get("X-Signature-256"), entry.secret) {
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	resp, err := entry.handler.HandleWebhook(r.Context(), source, body)
	switch {
	case errors.Is(err, errBadPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		writeError(w, runErrorStatus(err), "webhook handler failed")
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// runWebhook executes the RunRequest carried by a webhook body.
type runWebhook struct {
	agent *agent.Agent
}

func (h *runWebhook) HandleWebhook(ctx context.Context, source string, body []byte) (any, error) {
	req, err := parseRunRequest(body, security.DefaultMaxPayloadSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if req.Input == "" {
		req.Input = "webhook:" + source
	}
	res, err := execute(ctx, h.agent, req)
	if err != nil {
		return nil, err
	}
	return newRunResponse(res), nil
}

// validateHMAC checks HMAC-SHA256 signature in constant time.
func validateHMAC(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

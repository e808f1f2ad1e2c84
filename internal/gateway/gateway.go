// Package gateway exposes the tool registry and the agent over HTTP. It
// binds to loopback by default and follows the module system pattern.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/telemetry"
	"github.com/flemzord/toolclaw/internal/tool"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Gateway is the HTTP gateway module. It is a leaf module: nothing
// imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	webhooks  *WebhookDispatcher
	startedAt time.Time

	// Resolved lazily at Start() via the service registry.
	registry *tool.Registry
	agent    *agent.Agent
	audit    *security.AuditLogger
	limiter  *security.RateLimiter
	metrics  *telemetry.Metrics
	health   core.HealthReporter
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.webhooks = NewWebhookDispatcher(g.logger)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	return g.config.validate()
}

// resolve binds optional services. Missing services degrade the matching
// endpoints instead of failing the module.
func (g *Gateway) resolve() {
	g.registry, _ = core.Service[*tool.Registry](g.appCtx, core.ServiceToolRegistry)
	g.agent, _ = core.Service[*agent.Agent](g.appCtx, core.ServiceAgent)
	g.audit, _ = core.Service[*security.AuditLogger](g.appCtx, core.ServiceAudit)
	g.limiter, _ = core.Service[*security.RateLimiter](g.appCtx, core.ServiceRateLimiter)
	g.metrics, _ = core.Service[*telemetry.Metrics](g.appCtx, core.ServiceMetrics)
	g.health, _ = core.Service[core.HealthReporter](g.appCtx, core.ServiceHealth)

	if g.agent != nil {
		for source, cfg := range g.config.Webhooks {
			g.webhooks.Register(source, &runWebhook{agent: g.agent}, cfg.Secret)
			g.logger.Info("webhook source configured", "source", source)
		}
	}
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	g.resolve()
	g.startedAt = time.Now()

	if !g.config.Auth.IsConfigured() {
		g.logger.Warn("gateway auth not configured, API endpoints disabled")
	}

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

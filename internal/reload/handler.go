package reload

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/flemzord/toolclaw/internal/config"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/tool"
)

// Handler applies a changed configuration file to a running App.
//
// Only settings that can change safely in place are applied: the tool
// policy and the configuration of modules implementing core.Reloader.
// Adding or removing modules needs a restart and is only reported.
type Handler struct {
	app      *core.App
	registry *tool.Registry
	logger   *slog.Logger
}

// NewHandler creates a reload handler.
func NewHandler(app *core.App, registry *tool.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		app:      app,
		registry: registry,
		logger:   logger.With("component", "reload"),
	}
}

// HandleReload loads and validates configPath, then applies it. An invalid
// file leaves the running configuration untouched.
func (h *Handler) HandleReload(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return h.Apply(ctx, cfg)
}

// Apply applies an already validated configuration.
func (h *Handler) Apply(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before reload: %w", err)
	}

	if added, removed := diffModules(h.app.Modules(), config.Resolve(cfg)); len(added)+len(removed) > 0 {
		h.logger.Warn("module set changed, restart required to apply",
			"added", added, "removed", removed)
	}

	h.registry.SetPolicy(cfg.Security.Policy)

	appCtx := h.app.Context().WithModuleConfigs(cfg.Modules)
	if err := h.app.ReloadModules(appCtx); err != nil {
		return fmt.Errorf("reloading modules: %w", err)
	}

	h.logger.Info("configuration reloaded")
	return nil
}

func diffModules(loaded []core.ModuleID, wanted []string) (added, removed []string) {
	have := make([]string, len(loaded))
	for i, id := range loaded {
		have[i] = string(id)
	}
	for _, id := range wanted {
		if !slices.Contains(have, id) {
			added = append(added, id)
		}
	}
	for _, id := range have {
		if !slices.Contains(wanted, id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

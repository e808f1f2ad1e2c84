// Package core provides the module system foundation for toolclaw.
package core

import (
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// Well-known service names shared between modules.
const (
	ServiceToolRegistry = "tool.registry"
	ServiceHistory      = "agent.history"
	ServiceAgent        = "agent"
	ServiceAudit        = "security.audit"
	ServiceRateLimiter  = "security.ratelimiter"
	ServiceRedactor     = "security.redactor"
	ServiceCredentials  = "security.credentials"
	ServiceMetrics      = "telemetry.metrics"
	ServiceHealth       = "core.health"
)

// AppContext carries shared resources available to modules during provisioning
// and at runtime.
type AppContext struct {
	// Logger for the current module scope.
	Logger *slog.Logger

	// DataDir is the root directory for persistent module data.
	DataDir string

	// Workspace is the directory tools treat as their working root.
	Workspace string

	parentLogger  *slog.Logger
	moduleConfigs map[string]yaml.Node
	services      *serviceTable
}

type serviceTable struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewAppContext creates a new AppContext with the given base logger and directories.
func NewAppContext(logger *slog.Logger, dataDir, workspace string) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:       logger,
		DataDir:      dataDir,
		Workspace:    workspace,
		parentLogger: logger,
		services:     &serviceTable{items: make(map[string]any)},
	}
}

// WithModuleConfigs returns a copy of the AppContext with module configurations set.
// Each key is a module ID mapping to its raw YAML configuration node.
func (ctx *AppContext) WithModuleConfigs(configs map[string]yaml.Node) *AppContext {
	cp := *ctx
	cp.moduleConfigs = configs
	return &cp
}

// ModuleConfig returns the raw configuration node of module id.
func (ctx *AppContext) ModuleConfig(id string) (yaml.Node, bool) {
	node, ok := ctx.moduleConfigs[id]
	return node, ok
}

// ForModule returns a new AppContext scoped to the given module ID,
// with a child logger that includes the module ID. Services are shared.
func (ctx *AppContext) ForModule(id ModuleID) *AppContext {
	return &AppContext{
		Logger:        ctx.parentLogger.With("module", string(id)),
		DataDir:       ctx.DataDir,
		Workspace:     ctx.Workspace,
		parentLogger:  ctx.parentLogger,
		moduleConfigs: ctx.moduleConfigs,
		services:      ctx.services,
	}
}

// RegisterService makes a value discoverable by other modules under name.
// A later registration under the same name replaces the earlier one.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.mu.Lock()
	defer ctx.services.mu.Unlock()
	ctx.services.items[name] = svc
}

// GetService returns the service registered under name.
func (ctx *AppContext) GetService(name string) (any, bool) {
	ctx.services.mu.RLock()
	defer ctx.services.mu.RUnlock()
	svc, ok := ctx.services.items[name]
	return svc, ok
}

// Service looks up a service and asserts its type. The boolean is false
// when the name is unknown or the registered value is not a T.
func Service[T any](ctx *AppContext, name string) (T, bool) {
	var zero T
	raw, ok := ctx.GetService(name)
	if !ok {
		return zero, false
	}
	svc, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return svc, true
}

// LoadModule instantiates and provisions a module by its ID.
// It calls Configure, Provision and Validate if the module implements
// those interfaces. The lifecycle order is:
//
//	New() → Configure() → Provision() → Validate()
//
// Returns the provisioned module instance ready for use.
func (ctx *AppContext) LoadModule(id string) (Module, error) {
	info, ok := GetModule(id)
	if !ok {
		return nil, fmt.Errorf("unknown module: %s", id)
	}

	mod := info.New()

	if c, ok := mod.(Configurable); ok {
		if node, exists := ctx.moduleConfigs[id]; exists {
			if err := c.Configure(&node); err != nil {
				return nil, fmt.Errorf("configuring module %s: %w", id, err)
			}
		}
	}

	if p, ok := mod.(Provisioner); ok {
		moduleCtx := ctx.ForModule(info.ID)
		if err := p.Provision(moduleCtx); err != nil {
			return nil, fmt.Errorf("provisioning module %s: %w", id, err)
		}
	}

	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating module %s: %w", id, err)
		}
	}

	return mod, nil
}

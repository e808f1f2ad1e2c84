// Package database implements the tool.database module: read-only SQL
// over a single SQLite, MySQL or PostgreSQL connection, screened by
// internal/query before anything reaches the driver.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/tool"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ tool.Tool          = (*Tool)(nil)
	_ core.Module        = (*Module)(nil)
	_ core.Configurable  = (*Module)(nil)
	_ core.Provisioner   = (*Module)(nil)
	_ core.Validator     = (*Module)(nil)
	_ core.Stopper       = (*Module)(nil)
	_ core.HealthChecker = (*Module)(nil)
)

// Module registers the database tool into the tool registry and closes
// its connection on shutdown.
type Module struct {
	config Config
	logger *slog.Logger
	tool   *Tool
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tool.database",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("tool.database: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	if !*m.config.Enabled {
		m.logger.Info("database tool disabled")
		return nil
	}

	reg, ok := core.Service[*tool.Registry](ctx, core.ServiceToolRegistry)
	if !ok {
		return fmt.Errorf("tool.database: service %s not available", core.ServiceToolRegistry)
	}
	creds, _ := core.Service[*security.CredentialStore](ctx, core.ServiceCredentials)

	m.tool = New(Options{
		MaxRows:      m.config.MaxRows,
		QueryTimeout: m.config.parsedQueryTimeout(),
		Credentials:  creds,
		Logger:       m.logger,
		SQLiteRoots:  sqliteRoots(ctx, m.config.SQLiteRoots),
	})
	return reg.Register(m.tool)
}

func sqliteRoots(ctx *core.AppContext, extra []string) []string {
	roots := make([]string, 0, len(extra)+3)
	if ctx.Workspace != "" {
		roots = append(roots, ctx.Workspace)
	} else if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	if ctx.DataDir != "" {
		roots = append(roots, ctx.DataDir)
	}
	roots = append(roots, os.TempDir())
	return append(roots, extra...)
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.tool == nil {
		return nil
	}
	return m.tool.Close()
}

// Health implements core.HealthChecker. No open connection is healthy.
func (m *Module) Health(ctx context.Context) error {
	if m.tool == nil {
		return nil
	}
	return m.tool.Ping(ctx)
}

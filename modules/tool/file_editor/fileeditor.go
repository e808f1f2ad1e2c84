// Package fileeditor implements the tool.file_editor module: text file
// operations confined to the workspace, the temp directory and any
// configured roots.
package fileeditor

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/tool"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ tool.Tool         = (*Editor)(nil)
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Module registers the file editor into the tool registry.
type Module struct {
	config Config
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tool.file_editor",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("tool.file_editor: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	if !*m.config.Enabled {
		m.logger.Info("file editor disabled")
		return nil
	}

	reg, ok := core.Service[*tool.Registry](ctx, core.ServiceToolRegistry)
	if !ok {
		return fmt.Errorf("tool.file_editor: service %s not available", core.ServiceToolRegistry)
	}

	roots := make([]string, 0, len(m.config.Roots)+2)
	if ctx.Workspace != "" {
		roots = append(roots, ctx.Workspace)
	} else if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	roots = append(roots, os.TempDir())
	roots = append(roots, m.config.Roots...)

	m.logger.Info("file editor provisioned", "roots", roots, "backup", *m.config.BackupEnabled)
	return reg.Register(New(Options{
		Roots:       roots,
		Extensions:  *m.config.AllowedExtensions,
		MaxFileSize: m.config.MaxFileSize,
		Backup:      *m.config.BackupEnabled,
		Logger:      m.logger,
	}))
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Package sqlite implements a persistent execution history module backed by
// modernc.org/sqlite (pure Go, no CGO) in WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/memory"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ memory.HistoryStore = (*historyStore)(nil)
	_ core.Configurable   = (*Module)(nil)
	_ core.Provisioner    = (*Module)(nil)
	_ core.Validator      = (*Module)(nil)
	_ core.Stopper        = (*Module)(nil)
	_ core.HealthChecker  = (*Module)(nil)
)

// Module publishes a SQLite-backed memory.HistoryStore as the agent's
// history service.
type Module struct {
	config  Config
	db      *sql.DB
	logger  *slog.Logger
	history *historyStore
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "memory.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}

	db, err := open(context.Background(), m.config)
	if err != nil {
		return err
	}

	m.db = db
	m.history = &historyStore{db: db, max: m.config.MaxRecords}
	ctx.RegisterService(core.ServiceHistory, memory.HistoryStore(m.history))

	m.logger.Info("sqlite history provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
		"max_records", m.config.MaxRecords,
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.db.PingContext(context.Background()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sqlite history stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Health implements core.HealthChecker.
func (m *Module) Health(ctx context.Context) error {
	if m.db == nil {
		return fmt.Errorf("sqlite: not open")
	}
	return m.db.PingContext(ctx)
}

// History returns the HistoryStore implementation.
func (m *Module) History() memory.HistoryStore {
	return m.history
}

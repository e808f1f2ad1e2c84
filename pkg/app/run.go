// Package app assembles a toolclaw runtime from configuration: security
// services, the tool registry, configured modules and the agent.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/config"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/telemetry"
	"github.com/flemzord/toolclaw/internal/tool"
)

// ServiceName is reported as service.name in traces.
const ServiceName = "toolclaw"

// Params configures how the runtime is assembled.
type Params struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is tried and config.Default() is used
	// when no file is found.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// DataDir and Workspace override the configured directories.
	DataDir   string
	Workspace string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Planner turns instructions into plans. Defaults to agent.TextPlanner.
	Planner agent.Planner

	// SkipNamespaces lists module namespaces not loaded, e.g. "gateway"
	// for one-shot commands.
	SkipNamespaces []string
}

// Runtime is an assembled toolclaw process.
type Runtime struct {
	Config      *config.Config
	ConfigPath  string
	App         *core.App
	Context     *core.AppContext
	Logger      *slog.Logger
	Registry    *tool.Registry
	Agent       *agent.Agent
	Metrics     *telemetry.Metrics
	Audit       *security.AuditLogger
	Credentials *security.CredentialStore

	closers         []io.Closer
	shutdownTracing telemetry.Shutdown
}

// Build loads configuration and provisions every configured module. The
// returned runtime is not started; callers Start it to run long-lived
// modules and must Close it.
func Build(ctx context.Context, params Params) (*Runtime, error) {
	cfg, cfgPath, err := loadConfig(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, ConfigPath: cfgPath}

	dataDir := firstNonEmpty(params.DataDir, cfg.DataDir, DefaultDataDir())
	workspace := firstNonEmpty(params.Workspace, cfg.Workspace, DefaultWorkspace())
	level := firstNonEmpty(params.LogLevel, cfg.Log.Level, "info")
	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}

	sec, err := wireSecurity(cfg.Security, dataDir, out, security.ParseLevel(level))
	if err != nil {
		return nil, err
	}
	rt.Logger = sec.logger
	rt.Audit = sec.audit
	rt.Credentials = sec.credentials
	if sec.auditFile != nil {
		rt.closers = append(rt.closers, sec.auditFile)
	}

	shutdown, err := telemetry.SetupTracing(ctx, cfg.Telemetry.Tracing, ServiceName, params.Version)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.shutdownTracing = shutdown
	rt.Metrics = telemetry.NewMetrics()
	rt.Registry = wireRegistry(cfg.Security.Policy, sec, rt.Metrics)

	appCtx := core.NewAppContext(rt.Logger, dataDir, workspace).WithModuleConfigs(cfg.Modules)
	registerServices(appCtx, rt, sec)
	rt.Context = appCtx

	rt.App = core.NewApp(appCtx)
	appCtx.RegisterService(core.ServiceHealth, core.HealthReporter(rt.App))
	ids := moduleIDs(cfg, params.SkipNamespaces)
	if err := rt.App.LoadModules(ids); err != nil {
		rt.close()
		return nil, err
	}

	rt.Agent = wireAgent(appCtx, cfg.Agent, params.Planner, rt, sec)
	appCtx.RegisterService(core.ServiceAgent, rt.Agent)

	// Modules may have added credentials while provisioning.
	sec.redactor.SyncCredentials(rt.Credentials)

	rt.Logger.Info("runtime ready",
		"config", cfgPath,
		"modules", len(ids),
		"tools", len(rt.Registry.Names()),
		"data_dir", dataDir,
		"workspace", workspace)
	return rt, nil
}

// Start starts long-lived modules (gateway, scheduler).
func (rt *Runtime) Start() error {
	return rt.App.Start()
}

// Serve starts the runtime and blocks until ctx is cancelled or a
// shutdown signal arrives.
func (rt *Runtime) Serve(ctx context.Context) error {
	return rt.App.Run(ctx)
}

// Close stops and releases modules, flushes traces and closes the audit
// log.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.App != nil {
		rt.App.Close()
	}
	if rt.shutdownTracing != nil {
		if err := rt.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}
	errs = append(errs, rt.close())
	return errors.Join(errs...)
}

func (rt *Runtime) close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return config.Default(), "", nil
		}
		path = resolved
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func moduleIDs(cfg *config.Config, skip []string) []string {
	ids := config.Resolve(cfg)
	if len(skip) == 0 {
		return ids
	}
	return slices.DeleteFunc(ids, func(id string) bool {
		return slices.Contains(skip, core.ModuleID(id).Namespace())
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/toolclaw/toolclaw.yaml → ~/.config/toolclaw/toolclaw.yaml → ./toolclaw.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "toolclaw", "toolclaw.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "toolclaw", "toolclaw.yaml"))
	}

	candidates = append(candidates, "toolclaw.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/toolclaw if set, otherwise ~/.local/share/toolclaw following the XDG base directory layout.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "toolclaw")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "toolclaw")
}

// DefaultWorkspace returns the current working directory.
func DefaultWorkspace() string {
	dir, _ := os.Getwd()
	return dir
}

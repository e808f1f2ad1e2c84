package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/config"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/memory"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/telemetry"
	"github.com/flemzord/toolclaw/internal/tool"
)

// securityStack groups the services every other component depends on.
type securityStack struct {
	credentials *security.CredentialStore
	redactor    *security.Redactor
	logger      *slog.Logger
	audit       *security.AuditLogger
	auditFile   *os.File
	limiter     *security.RateLimiter
}

// wireSecurity builds the credential store, redacting logger, audit logger
// and rate limiter. Credentials are loaded before the logger is created so
// their values never reach a log line.
func wireSecurity(cfg config.SecurityConfig, dataDir string, out io.Writer, level slog.Leveler) (*securityStack, error) {
	s := &securityStack{
		credentials: security.NewCredentialStore(),
		redactor:    security.NewRedactor(),
	}
	missing := s.credentials.LoadEnv(cfg.Credentials...)
	s.redactor.SyncCredentials(s.credentials)
	s.logger = security.NewLogger(out, level, s.redactor)
	if len(missing) > 0 {
		s.logger.Warn("credentials not set in environment", "names", missing)
	}

	var w io.Writer
	if cfg.AuditLog != "" {
		path := cfg.AuditLog
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		f, err := security.OpenAuditFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening audit log: %w", err)
		}
		s.auditFile = f
		w = f
	}
	s.audit = security.NewAuditLogger(security.AuditLoggerConfig{
		Writer:   w,
		Redactor: s.redactor,
	})
	s.limiter = security.NewRateLimiter(cfg.RateLimits)
	return s, nil
}

// wireRegistry creates the tool registry with the security stack and the
// metrics observer attached. Tracing uses the global provider.
func wireRegistry(policy tool.Policy, sec *securityStack, metrics *telemetry.Metrics) *tool.Registry {
	reg := tool.NewRegistry()
	reg.SetLogger(sec.logger)
	reg.SetAuditLogger(sec.audit)
	reg.SetRateLimiter(sec.limiter)
	reg.SetPolicy(policy)
	reg.AddObserver(metrics)
	return reg
}

// registerServices exposes shared services to modules before they are
// provisioned.
func registerServices(appCtx *core.AppContext, rt *Runtime, sec *securityStack) {
	appCtx.RegisterService(core.ServiceToolRegistry, rt.Registry)
	appCtx.RegisterService(core.ServiceCredentials, sec.credentials)
	appCtx.RegisterService(core.ServiceRedactor, sec.redactor)
	appCtx.RegisterService(core.ServiceAudit, sec.audit)
	appCtx.RegisterService(core.ServiceRateLimiter, sec.limiter)
	appCtx.RegisterService(core.ServiceMetrics, rt.Metrics)
}

// wireAgent builds the orchestrator once modules are provisioned, so a
// persistent history module takes precedence over the in-memory ring.
func wireAgent(appCtx *core.AppContext, cfg config.AgentConfig, planner agent.Planner, rt *Runtime, sec *securityStack) *agent.Agent {
	history, ok := core.Service[memory.HistoryStore](appCtx, core.ServiceHistory)
	if !ok {
		size := cfg.HistorySize
		if size <= 0 {
			size = memory.DefaultHistorySize
		}
		history = memory.NewRingHistory(size)
	}
	if planner == nil {
		planner = agent.TextPlanner()
	}
	return agent.New(agent.Options{
		Registry:    rt.Registry,
		Planner:     planner,
		History:     history,
		Config:      cfg.Config,
		Logger:      rt.Logger,
		Audit:       sec.audit,
		RateLimiter: sec.limiter,
		Observer:    rt.Metrics,
	})
}

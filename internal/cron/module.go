package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/memory"
	"github.com/flemzord/toolclaw/pkg/plan"
)

func init() {
	core.RegisterModule(&Module{})
}

var validJobName = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// JobConfig declares one scheduled plan.
type JobConfig struct {
	Name     string     `yaml:"name"`
	Schedule string     `yaml:"schedule"`
	Input    string     `yaml:"input"`
	PlanFile string     `yaml:"plan_file"`
	Plan     *plan.Plan `yaml:"plan"`
}

// PruneConfig schedules history pruning. Keep 0 disables the job.
type PruneConfig struct {
	Schedule string `yaml:"schedule"`
	Keep     int    `yaml:"keep"`
}

// Config is the scheduler.cron module configuration.
type Config struct {
	Jobs  []JobConfig `yaml:"jobs"`
	Prune PruneConfig `yaml:"prune"`
}

func (c *Config) validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, j := range c.Jobs {
		if !validJobName.MatchString(j.Name) {
			errs = append(errs, fmt.Errorf("cron: jobs[%d]: invalid name %q", i, j.Name))
		}
		if seen[j.Name] {
			errs = append(errs, fmt.Errorf("cron: jobs[%d]: duplicate name %q", i, j.Name))
		}
		seen[j.Name] = true
		if err := ParseSchedule(j.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("cron: job %s: invalid schedule %q: %w", j.Name, j.Schedule, err))
		}
		if j.Plan != nil && j.PlanFile != "" {
			errs = append(errs, fmt.Errorf("cron: job %s: plan and plan_file are mutually exclusive", j.Name))
		}
		if j.Plan == nil && j.PlanFile == "" && j.Input == "" {
			errs = append(errs, fmt.Errorf("cron: job %s: one of input, plan or plan_file is required", j.Name))
		}
	}
	if c.Prune.Keep < 0 {
		errs = append(errs, errors.New("cron: prune.keep must not be negative"))
	}
	if c.Prune.Keep > 0 && c.Prune.Schedule != "" {
		if err := ParseSchedule(c.Prune.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("cron: invalid prune schedule %q: %w", c.Prune.Schedule, err))
		}
	}
	return errors.Join(errs...)
}

// Module runs scheduled plans and history pruning.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	scheduler *Scheduler
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "scheduler.cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.scheduler = NewScheduler(ctx.Logger)
	for i := range m.config.Jobs {
		if f := m.config.Jobs[i].PlanFile; f != "" && !filepath.IsAbs(f) && ctx.Workspace != "" {
			m.config.Jobs[i].PlanFile = filepath.Join(ctx.Workspace, f)
		}
	}
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Scheduler returns the underlying scheduler.
func (m *Module) Scheduler() *Scheduler { return m.scheduler }

// Start implements core.Starter. The agent is resolved here because it is
// registered after modules are provisioned.
func (m *Module) Start() error {
	a, ok := core.Service[*agent.Agent](m.appCtx, core.ServiceAgent)
	if !ok && len(m.config.Jobs) > 0 {
		return errors.New("cron: agent service not available")
	}

	for _, jc := range m.config.Jobs {
		if err := m.scheduler.RegisterJob(&PlanJob{
			JobName:      jc.Name,
			ScheduleExpr: jc.Schedule,
			Input:        jc.Input,
			Plan:         jc.Plan,
			PlanFile:     jc.PlanFile,
			Runner:       a,
			Logger:       m.logger,
		}); err != nil {
			return err
		}
	}

	if m.config.Prune.Keep > 0 {
		store, ok := core.Service[memory.HistoryStore](m.appCtx, core.ServiceHistory)
		if !ok && a != nil {
			store, ok = a.HistoryStore(), true
		}
		if !ok {
			return errors.New("cron: history store not available for pruning")
		}
		if err := m.scheduler.RegisterJob(&HistoryPruneJob{
			Store:        store,
			Keep:         m.config.Prune.Keep,
			ScheduleExpr: m.config.Prune.Schedule,
			Logger:       m.logger,
		}); err != nil {
			return err
		}
	}

	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}

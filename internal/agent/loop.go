package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/toolclaw/internal/memory"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/flemzord/toolclaw/pkg/plan"
)

const tracerName = "github.com/flemzord/toolclaw/internal/agent"

// maxAuditInputLen bounds the instruction text copied into audit events.
const maxAuditInputLen = 512

// RunObserver is notified when a run finishes.
type RunObserver interface {
	ObserveRun(state, stopReason string, steps int)
}

// Options holds the collaborators of an Agent. Only Registry is required.
type Options struct {
	Registry    *tool.Registry
	Planner     Planner
	History     memory.HistoryStore
	Config      Config
	Logger      *slog.Logger
	Audit       *security.AuditLogger
	RateLimiter *security.RateLimiter
	Tracer      trace.Tracer
	Observer    RunObserver
	Now         func() time.Time
}

// Agent executes plans against a tool registry.
type Agent struct {
	registry *tool.Registry
	planner  Planner
	history  memory.HistoryStore
	config   Config
	logger   *slog.Logger
	audit    *security.AuditLogger
	limiter  *security.RateLimiter
	tracer   trace.Tracer
	observer RunObserver
	now      func() time.Time
	executor *stepExecutor
	running  atomic.Int64
}

// New creates an Agent. A nil History gets an in-memory ring of the
// default capacity.
func New(opts Options) *Agent {
	cfg := opts.Config.withDefaults()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.History == nil {
		opts.History = memory.NewRingHistory(memory.DefaultHistorySize)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger.With("component", "agent")

	return &Agent{
		registry: opts.Registry,
		planner:  opts.Planner,
		history:  opts.History,
		config:   cfg,
		logger:   logger,
		audit:    opts.Audit,
		limiter:  opts.RateLimiter,
		tracer:   opts.Tracer,
		observer: opts.Observer,
		now:      opts.Now,
		executor: &stepExecutor{
			registry: opts.Registry,
			tracer:   opts.Tracer,
			logger:   logger,
			retries:  cfg.Retries,
			backoff:  cfg.RetryBackoff,
		},
	}
}

// Config returns the effective configuration.
func (a *Agent) Config() Config { return a.config }

// Registry returns the tool registry the agent dispatches to.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Run asks the planner for a plan and executes it. A planning failure ends
// the run in StateFailed with the error in the transcript; the returned
// error is non-nil only when the run could not start.
func (a *Agent) Run(ctx context.Context, input string) (Result, error) {
	if a.planner == nil {
		return Result{}, ErrNoPlanner
	}
	return a.run(ctx, input, func(ctx context.Context) (plan.Plan, error) {
		return a.planner.Plan(ctx, input)
	})
}

// Execute runs a finished plan.
func (a *Agent) Execute(ctx context.Context, input string, p plan.Plan) (Result, error) {
	return a.run(ctx, input, func(context.Context) (plan.Plan, error) { return p, nil })
}

func (a *Agent) run(ctx context.Context, input string, planFn func(context.Context) (plan.Plan, error)) (Result, error) {
	if a.limiter != nil {
		if err := a.limiter.Allow(security.KindRun); err != nil {
			a.logAudit(security.AuditEvent{Type: security.EventRateLimit, Detail: "run rate limit exceeded"})
			return Result{}, fmt.Errorf("agent: %w", err)
		}
	}

	a.running.Add(1)
	defer a.running.Add(-1)

	start := a.now()
	rec := memory.NewRecord(input, plan.Plan{}, start)

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	ctx, span := a.tracer.Start(ctx, "agent.run", trace.WithAttributes(attribute.String("run.id", rec.ID)))
	defer span.End()

	a.logAudit(security.AuditEvent{Type: security.EventRunStart, RunID: rec.ID, Detail: clip(input)})
	a.logger.Info("run started", "run_id", rec.ID)

	state := newRunState(a.config.MaxSteps)
	state.state = StatePlanning
	p, err := planFn(ctx)
	if err != nil {
		state.note("planning failed: %v", err)
		state.stop(StateFailed, StopReasonPlanError)
		span.RecordError(err)
	} else {
		span.SetAttributes(attribute.Int("plan.steps", p.Len()))
		a.executePlan(ctx, state, p)
	}

	res := Result{
		RunID:         rec.ID,
		Input:         input,
		Plan:          p,
		Transcript:    state.transcript(),
		Steps:         state.steps,
		StepsExecuted: state.executed,
		State:         state.state,
		StopReason:    state.reason,
		Duration:      a.now().Sub(start),
	}
	span.SetAttributes(
		attribute.Int("run.steps_executed", res.StepsExecuted),
		attribute.String("run.stop_reason", string(res.StopReason)),
	)

	rec.Plan = p
	rec.Result = res.Transcript
	rec.StepsExecuted = res.StepsExecuted
	rec.Failed = res.State == StateFailed
	rec.Duration = res.Duration
	// The run context may have expired; the record is still written.
	if err := a.history.Append(context.WithoutCancel(ctx), rec); err != nil {
		a.logger.Warn("history append failed", "run_id", rec.ID, "error", err)
	}

	a.logAudit(security.AuditEvent{
		Type:  security.EventRunFinish,
		RunID: rec.ID,
		Metadata: map[string]string{
			"state":          string(res.State),
			"stop_reason":    string(res.StopReason),
			"steps_executed": strconv.Itoa(res.StepsExecuted),
		},
	})
	if a.observer != nil {
		a.observer.ObserveRun(string(res.State), string(res.StopReason), res.StepsExecuted)
	}
	a.logger.Info("run finished",
		"run_id", rec.ID,
		"state", res.State,
		"stop_reason", res.StopReason,
		"steps", res.StepsExecuted,
		"failures", res.Failures(),
		"duration", res.Duration)
	return res, nil
}

// executePlan dispatches the steps of p in order until the plan ends, the
// budget is used up or ctx is done. Step failures never stop the loop.
func (a *Agent) executePlan(ctx context.Context, state *runState, p plan.Plan) {
	state.state = StateExecuting
	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				state.note("run timed out after %s", a.config.Timeout)
				state.stop(StateCompleted, StopReasonTimeout)
			} else {
				state.note("run cancelled")
				state.stop(StateCompleted, StopReasonCancelled)
			}
			return
		}
		if state.exhausted() {
			state.note("step budget exhausted (%d steps)", state.budget)
			state.stop(StateCompleted, StopReasonBudget)
			return
		}
		state.record(a.executor.execute(ctx, i+1, step))
	}
	state.stop(StateCompleted, StopReasonComplete)
}

// History returns up to n of the most recent execution records.
func (a *Agent) History(ctx context.Context, n int) ([]memory.ExecutionRecord, error) {
	return a.history.Recent(ctx, n)
}

// HistoryStore returns the store runs are recorded in.
func (a *Agent) HistoryStore() memory.HistoryStore { return a.history }

// Stats reports the number of recorded executions, runs in flight, the
// step budget and the number of registered tools.
func (a *Agent) Stats(ctx context.Context) (Stats, error) {
	n, err := a.history.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Executions: n,
		Running:    int(a.running.Load()),
		MaxSteps:   a.config.MaxSteps,
		Tools:      len(a.registry.Names()),
	}, nil
}

func (a *Agent) logAudit(ev security.AuditEvent) {
	if a.audit != nil {
		a.audit.Log(ev)
	}
}

func clip(s string) string {
	if len(s) <= maxAuditInputLen {
		return s
	}
	i := maxAuditInputLen
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "...(truncated)"
}

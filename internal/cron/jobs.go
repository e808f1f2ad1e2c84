package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/pkg/plan"
)

// PlanJob executes a plan on a schedule. The plan comes from, in order of
// precedence, Plan, PlanFile, or the runner's planner applied to Input.
type PlanJob struct {
	JobName      string
	ScheduleExpr string
	Input        string
	Plan         *plan.Plan
	PlanFile     string
	Runner       PlanRunner
	Logger       *slog.Logger
}

// Compile-time interface check.
var _ Job = (*PlanJob)(nil)

// Name implements Job.
func (j *PlanJob) Name() string { return "plan:" + j.JobName }

// Schedule implements Job.
func (j *PlanJob) Schedule() string { return j.ScheduleExpr }

// Run executes the plan. The plan file is re-read on every tick so edits
// take effect without a restart.
func (j *PlanJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: plan job cancelled: %w", ctx.Err())
	}

	input := j.Input
	if input == "" {
		input = "cron:" + j.JobName
	}

	var (
		res agent.Result
		err error
	)
	switch {
	case j.Plan != nil:
		res, err = j.Runner.Execute(ctx, input, *j.Plan)
	case j.PlanFile != "":
		var p plan.Plan
		p, err = plan.Load(j.PlanFile)
		if err != nil {
			return fmt.Errorf("cron: job %s: %w", j.JobName, err)
		}
		res, err = j.Runner.Execute(ctx, input, p)
	default:
		res, err = j.Runner.Run(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("cron: job %s: %w", j.JobName, err)
	}

	j.Logger.Info("cron: plan run finished",
		"job", j.JobName,
		"run_id", res.RunID,
		"stop_reason", res.StopReason,
		"steps", res.StepsExecuted,
		"failures", res.Failures())
	if res.State == agent.StateFailed {
		return errors.New("cron: job " + j.JobName + ": " + res.Transcript)
	}
	return nil
}

// HistoryPruneJob trims the execution history to the newest Keep records.
type HistoryPruneJob struct {
	Store        HistoryPruner
	Keep         int
	ScheduleExpr string // empty = default "@hourly"
	Logger       *slog.Logger
}

// Compile-time interface check.
var _ Job = (*HistoryPruneJob)(nil)

// Name implements Job.
func (j *HistoryPruneJob) Name() string { return "history_prune" }

// Schedule implements Job.
func (j *HistoryPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@hourly"
}

// Run prunes the history store.
func (j *HistoryPruneJob) Run(ctx context.Context) error {
	pruned, err := j.Store.Prune(ctx, j.Keep)
	if err != nil {
		return fmt.Errorf("cron: history prune: %w", err)
	}
	if pruned > 0 {
		j.Logger.Info("cron: pruned execution history", "count", pruned, "keep", j.Keep)
	}
	return nil
}

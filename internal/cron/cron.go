// Package cron runs plans and history maintenance on cron schedules.
//
// Jobs are registered on a Scheduler, which never runs two instances of the
// same job concurrently: a tick that fires while the previous run is still
// going is skipped. The scheduler.cron module builds PlanJob and
// HistoryPruneJob instances from configuration.
package cron

import (
	"context"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/pkg/plan"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job in logs and in Scheduler.Trigger.
	Name() string

	// Schedule returns a 5-field cron expression such as "*/5 * * * *" or a
	// descriptor such as "@hourly" or "@every 10m".
	Schedule() string

	// Run executes the job and should return when ctx is done.
	Run(ctx context.Context) error
}

// PlanRunner is the subset of agent.Agent needed by plan jobs.
type PlanRunner interface {
	Run(ctx context.Context, input string) (agent.Result, error)
	Execute(ctx context.Context, input string, p plan.Plan) (agent.Result, error)
}

// HistoryPruner is the subset of memory.HistoryStore needed by the prune job.
type HistoryPruner interface {
	Prune(ctx context.Context, keep int) (int, error)
}

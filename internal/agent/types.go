// Package agent implements the orchestrator loop: it obtains a plan,
// dispatches each step to the tool registry under a step budget, and
// records the run in the execution history.
package agent

import (
	"time"

	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/flemzord/toolclaw/pkg/plan"
)

// State is the lifecycle position of one run.
type State string

// Run states.
const (
	StateIdle      State = "idle"
	StatePlanning  State = "planning"
	StateExecuting State = "executing"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// StopReason describes why a run ended.
type StopReason string

// StopReason constants for run termination.
const (
	StopReasonComplete  StopReason = "complete"
	StopReasonBudget    StopReason = "budget_exhausted"
	StopReasonTimeout   StopReason = "timeout"
	StopReasonCancelled StopReason = "cancelled"
	StopReasonPlanError StopReason = "plan_error"
)

// StepRecord tracks one dispatched step.
type StepRecord struct {
	Index       int           `json:"index"`
	Description string        `json:"description,omitempty"`
	Tool        string        `json:"tool"`
	Args        tool.Args     `json:"args,omitempty"`
	Output      tool.Output   `json:"output"`
	Attempts    int           `json:"attempts"`
	Duration    time.Duration `json:"duration"`
}

// Result is the outcome of one run.
type Result struct {
	RunID         string        `json:"run_id"`
	Input         string        `json:"input"`
	Plan          plan.Plan     `json:"plan"`
	Transcript    string        `json:"transcript"`
	Steps         []StepRecord  `json:"steps"`
	StepsExecuted int           `json:"steps_executed"`
	State         State         `json:"state"`
	StopReason    StopReason    `json:"stop_reason"`
	Duration      time.Duration `json:"duration"`
}

// Failures counts steps whose output is an error.
func (r Result) Failures() int {
	n := 0
	for _, s := range r.Steps {
		if s.Output.IsError {
			n++
		}
	}
	return n
}

// Stats summarises an agent for status reports.
type Stats struct {
	Executions int `json:"total_executions"`
	Running    int `json:"running"`
	MaxSteps   int `json:"max_steps"`
	Tools      int `json:"available_tools"`
}

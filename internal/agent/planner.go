package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/flemzord/toolclaw/pkg/plan"
)

// ErrNoPlanner is returned by Run when the agent has no planner.
var ErrNoPlanner = errors.New("agent: no planner configured")

// Planner turns an instruction into a plan.
type Planner interface {
	Plan(ctx context.Context, input string) (plan.Plan, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, input string) (plan.Plan, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, input string) (plan.Plan, error) {
	return f(ctx, input)
}

// StaticPlanner returns the same plan for every input.
func StaticPlanner(p plan.Plan) Planner {
	return PlannerFunc(func(context.Context, string) (plan.Plan, error) {
		return p, nil
	})
}

// FilePlanner loads the plan from a JSON or YAML file on every call.
func FilePlanner(path string) Planner {
	return PlannerFunc(func(context.Context, string) (plan.Plan, error) {
		return plan.Load(path)
	})
}

// TextPlanner reads the plan from the instruction itself, taking the
// first JSON object found in it.
func TextPlanner() Planner {
	return PlannerFunc(func(_ context.Context, input string) (plan.Plan, error) {
		p, err := plan.Parse(input)
		if err != nil {
			return plan.Plan{}, fmt.Errorf("agent: %w", err)
		}
		return p, nil
	})
}

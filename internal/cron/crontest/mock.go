// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/cron"
	"github.com/flemzord/toolclaw/pkg/plan"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// RunnerCall records one call made to a MockRunner.
type RunnerCall struct {
	Input string
	Plan  *plan.Plan // nil for planner runs
}

// MockRunner is a test double for cron.PlanRunner. Results default to a
// completed run.
type MockRunner struct {
	Result agent.Result
	Err    error

	mu    sync.Mutex
	calls []RunnerCall
}

// Compile-time interface check.
var _ cron.PlanRunner = (*MockRunner)(nil)

// Run implements cron.PlanRunner.
func (m *MockRunner) Run(_ context.Context, input string) (agent.Result, error) {
	return m.record(RunnerCall{Input: input})
}

// Execute implements cron.PlanRunner.
func (m *MockRunner) Execute(_ context.Context, input string, p plan.Plan) (agent.Result, error) {
	return m.record(RunnerCall{Input: input, Plan: &p})
}

func (m *MockRunner) record(c RunnerCall) (agent.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()

	res := m.Result
	if res.State == "" {
		res.State = agent.StateCompleted
	}
	return res, m.Err
}

// Calls returns the calls made so far.
func (m *MockRunner) Calls() []RunnerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunnerCall(nil), m.calls...)
}

// MockPruner is a test double for cron.HistoryPruner.
type MockPruner struct {
	PruneFunc func(keep int) (int, error)

	mu    sync.Mutex
	keeps []int
}

// Prune implements cron.HistoryPruner.
func (m *MockPruner) Prune(_ context.Context, keep int) (int, error) {
	m.mu.Lock()
	m.keeps = append(m.keeps, keep)
	m.mu.Unlock()
	if m.PruneFunc != nil {
		return m.PruneFunc(keep)
	}
	return 0, nil
}

// Keeps returns the keep argument of every Prune call.
func (m *MockPruner) Keeps() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.keeps...)
}

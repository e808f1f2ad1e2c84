package agent

import (
	"fmt"
	"strings"
)

// runState is the mutable state of one run. It is owned by the goroutine
// executing that run and never shared, so repeated or concurrent runs
// cannot consume each other's step budget.
type runState struct {
	budget   int
	executed int
	state    State
	reason   StopReason
	lines    []string
	steps    []StepRecord
}

func newRunState(budget int) *runState {
	return &runState{budget: budget, state: StateIdle}
}

// exhausted reports whether the step budget has been used up.
func (s *runState) exhausted() bool {
	return s.executed >= s.budget
}

// record appends a dispatched step and its transcript line.
func (s *runState) record(rec StepRecord) {
	s.executed++
	s.steps = append(s.steps, rec)
	if rec.Output.IsError {
		s.lines = append(s.lines, fmt.Sprintf("step %d: error: %s", rec.Index, rec.Output.Content))
		return
	}
	s.lines = append(s.lines, fmt.Sprintf("step %d: %s", rec.Index, rec.Output.Content))
}

// note appends a free-form transcript line.
func (s *runState) note(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

// stop records the final state and reason.
func (s *runState) stop(state State, reason StopReason) {
	s.state = state
	s.reason = reason
}

func (s *runState) transcript() string {
	return strings.Join(s.lines, "\n")
}

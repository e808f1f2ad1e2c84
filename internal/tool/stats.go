package tool

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stats are the call statistics of one registered tool. Counters only grow
// and satisfy Calls == Successes + Failures once every in-flight dispatch
// has returned.
type Stats struct {
	Calls     uint64        `json:"calls"`
	Successes uint64        `json:"successes"`
	Failures  uint64        `json:"failures"`
	TotalTime time.Duration `json:"total_time"`
}

// SuccessRate returns successes / max(calls, 1).
func (s Stats) SuccessRate() float64 {
	return float64(s.Successes) / float64(max(s.Calls, 1))
}

// AverageLatency returns the mean time spent per call.
func (s Stats) AverageLatency() time.Duration {
	return s.TotalTime / time.Duration(max(s.Calls, 1))
}

type statsCounter struct {
	mu    sync.Mutex
	stats Stats
}

func (c *statsCounter) begin() {
	c.mu.Lock()
	c.stats.Calls++
	c.mu.Unlock()
}

func (c *statsCounter) finish(ok bool, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.stats.Successes++
	} else {
		c.stats.Failures++
	}
	c.stats.TotalTime += elapsed
}

func (c *statsCounter) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ListTools renders a report of every registered tool with its call count,
// success rate and average latency.
func (r *Registry) ListTools() string {
	names := r.Names()
	if len(names) == 0 {
		return "no tools registered"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "available tools (%d):\n", len(names))
	for _, name := range names {
		t, ok := r.Get(name)
		if !ok {
			continue
		}
		s, _ := r.Stats(name)
		fmt.Fprintf(&b, "- %s v%s: %s\n", name, t.Version(), t.Description())
		fmt.Fprintf(&b, "  calls: %d, success rate: %.1f%%, avg latency: %s\n",
			s.Calls, s.SuccessRate()*100, s.AverageLatency().Round(time.Microsecond))
	}
	return strings.TrimRight(b.String(), "\n")
}

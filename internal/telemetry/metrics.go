package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/toolclaw/internal/tool"
)

const namespace = "toolclaw"

// Metrics holds the Prometheus collectors of one process. It implements
// tool.Observer so the registry reports every dispatch.
type Metrics struct {
	registry     *prometheus.Registry
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	runSteps     prometheus.Histogram
	httpRequests *prometheus.CounterVec
}

// Compile-time interface check.
var _ tool.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool dispatches by tool and outcome condition.",
		}, []string{"tool", "condition"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool dispatch latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"tool"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Plan runs by final state and stop reason.",
		}, []string{"state", "stop_reason"}),
		runSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_steps",
			Help:      "Steps executed per plan run.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		m.toolCalls, m.toolDuration, m.runs, m.runSteps, m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDispatch implements tool.Observer.
func (m *Metrics) ObserveDispatch(name string, out tool.Output, elapsed time.Duration) {
	cond := string(out.Condition)
	if cond == "" {
		cond = "ok"
	}
	m.toolCalls.WithLabelValues(name, cond).Inc()
	m.toolDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveRun records a finished plan run.
func (m *Metrics) ObserveRun(state, stopReason string, steps int) {
	m.runs.WithLabelValues(state, stopReason).Inc()
	m.runSteps.Observe(float64(steps))
}

// ObserveHTTP records one API request.
func (m *Metrics) ObserveHTTP(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package tool

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/toolclaw/internal/security"
)

const tracerName = "github.com/flemzord/toolclaw/internal/tool"

var validName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Observer is notified after every dispatch to a registered tool.
type Observer interface {
	ObserveDispatch(name string, out Output, elapsed time.Duration)
}

type entry struct {
	tool  Tool
	stats *statsCounter
}

// Registry holds registered tools and dispatches calls to them.
// It is instance-based (not global) for better testability, and safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]*entry
	logger      *slog.Logger
	auditLogger *security.AuditLogger
	rateLimiter *security.RateLimiter
	policy      Policy
	tracer      trace.Tracer
	observers   []Observer
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]*entry),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
}

// SetLogger configures the logger used for registration events.
func (r *Registry) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger.With("component", "tool.registry")
}

// SetAuditLogger configures audit logging for tool executions.
func (r *Registry) SetAuditLogger(logger *security.AuditLogger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditLogger = logger
}

// SetRateLimiter configures rate limiting for tool executions.
func (r *Registry) SetRateLimiter(limiter *security.RateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimiter = limiter
}

// SetPolicy configures which tools may be dispatched.
func (r *Registry) SetPolicy(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy = p
}

// SetTracer replaces the tracer used for dispatch spans.
func (r *Registry) SetTracer(tracer trace.Tracer) {
	if tracer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracer = tracer
}

// AddObserver registers an observer notified after every dispatch.
func (r *Registry) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Register adds a tool to the registry. A tool registered under an existing
// name replaces the previous one and starts with fresh statistics.
func (r *Registry) Register(t Tool) error {
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return ErrEmptyToolName
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidToolName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.tools[name]; exists {
		r.logger.Warn("tool replaced",
			"tool", name,
			"old_version", prev.tool.Version(),
			"new_version", t.Version())
	} else {
		r.logger.Debug("tool registered", "tool", name, "version", t.Version())
	}

	r.tools[name] = &entry{tool: t, stats: &statsCounter{}}
	return nil
}

// Unregister removes a tool and its statistics. It reports whether a tool
// was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)
	r.logger.Debug("tool unregistered", "tool", name)
	return true
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// Names returns all registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Descriptors returns the descriptors of all registered tools sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	names := r.Names()
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if t, ok := r.Get(name); ok {
			out = append(out, Describe(t))
		}
	}
	return out
}

// Stats returns the statistics of a registered tool.
func (r *Registry) Stats(name string) (Stats, bool) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return Stats{}, false
	}
	return e.stats.snapshot(), true
}

// Snapshot returns the statistics of every registered tool.
func (r *Registry) Snapshot() map[string]Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Stats, len(r.tools))
	for name, e := range r.tools {
		out[name] = e.stats.snapshot()
	}
	return out
}

// Call dispatches and returns only the result text.
func (r *Registry) Call(ctx context.Context, name string, args Args) string {
	return r.Dispatch(ctx, name, args).Content
}

// Dispatch runs a tool by name: lookup → stats → rate limit → policy →
// schema and tool validation → execute → audit. It never panics and never
// returns an error; every outcome is encoded in the Output. Dispatching an
// unknown name creates no statistics entry.
func (r *Registry) Dispatch(ctx context.Context, name string, args Args) (out Output) {
	r.mu.RLock()
	e, ok := r.tools[name]
	rl := r.rateLimiter
	al := r.auditLogger
	policy := r.policy
	tracer := r.tracer
	logger := r.logger
	observers := r.observers
	r.mu.RUnlock()

	if !ok {
		return Fail(ConditionNotFound, "tool %q not found", name)
	}
	if args == nil {
		args = Args{}
	}

	ctx, span := tracer.Start(ctx, "tool.dispatch",
		trace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	e.stats.begin()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("tool panicked", "tool", name, "panic", rec)
			span.RecordError(fmt.Errorf("panic: %v", rec))
			out = Fail(ConditionExecution, "%s failed: panic: %v", name, rec)
		}
		elapsed := time.Since(start)
		e.stats.finish(!out.IsError, elapsed)
		span.SetAttributes(
			attribute.Bool("tool.error", out.IsError),
			attribute.String("tool.condition", string(out.Condition)),
		)
		if out.IsError {
			span.SetStatus(codes.Error, string(out.Condition))
		}
		for _, o := range observers {
			o.ObserveDispatch(name, out, elapsed)
		}
		if al != nil {
			al.Log(security.AuditEvent{
				Type:     security.EventToolResult,
				ToolName: name,
				Detail:   truncateForAudit(out.Content),
				Metadata: map[string]string{
					"is_error":  fmt.Sprintf("%v", out.IsError),
					"condition": string(out.Condition),
				},
			})
		}
	}()

	if rl != nil {
		if err := rl.Allow(security.KindToolCall); err != nil {
			if al != nil {
				al.Log(security.AuditEvent{
					Type:     security.EventRateLimit,
					ToolName: name,
					Detail:   "tool_call rate limit exceeded",
				})
			}
			return Fail(ConditionRateLimited, "%s: %v", name, err)
		}
	}

	// Truncate args to prevent audit log bloat from large payloads.
	if al != nil {
		al.Log(security.AuditEvent{
			Type:     security.EventToolCall,
			ToolName: name,
			Detail:   truncateForAudit(args.JSON()),
		})
	}

	if policy.Resolve(name) == ApprovalDeny {
		if al != nil {
			al.Log(security.AuditEvent{Type: security.EventPolicyDeny, ToolName: name})
		}
		return Fail(ConditionSafety, "%v: %s", ErrDenied, name)
	}

	if err := e.tool.Schema().Validate(args); err != nil {
		return Fail(ConditionValidation, "invalid arguments for %s: %s", name, flatten(err))
	}
	if err := e.tool.Validate(args); err != nil {
		return Fail(ConditionValidation, "invalid arguments for %s: %s", name, flatten(err))
	}

	res, err := e.tool.Execute(ctx, args)
	if err != nil {
		span.RecordError(err)
		logger.Warn("tool execution failed", "tool", name, "error", err)
		return Fail(ConditionExecution, "%s failed: %v", name, err)
	}
	if res.IsError && res.Condition == ConditionNone {
		res.Condition = ConditionExecution
	}
	return res
}

// flatten joins multi-line errors produced by errors.Join into one line.
func flatten(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

// maxAuditDetailLen is the maximum length of audit detail strings.
const maxAuditDetailLen = 4096

// truncateForAudit truncates a string to maxAuditDetailLen, appending
// a truncation indicator if the string was shortened.
// It walks back to a valid UTF-8 rune boundary to avoid splitting multi-byte
// characters when the cut falls mid-rune.
func truncateForAudit(s string) string {
	if len(s) <= maxAuditDetailLen {
		return s
	}
	i := maxAuditDetailLen
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "...(truncated)"
}

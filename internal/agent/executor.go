package agent

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/flemzord/toolclaw/pkg/plan"
)

// stepExecutor dispatches single plan steps through the registry.
type stepExecutor struct {
	registry *tool.Registry
	tracer   trace.Tracer
	logger   *slog.Logger
	retries  int
	backoff  time.Duration
}

// retryable reports whether a failed output may succeed on a new attempt.
func retryable(out tool.Output) bool {
	return out.IsError && (out.Condition == tool.ConditionTimeout || out.Condition == tool.ConditionRateLimited)
}

// execute dispatches step index (1-based) and returns its record. It never
// fails: every outcome is encoded in the record's output.
func (e *stepExecutor) execute(ctx context.Context, index int, step plan.Step) StepRecord {
	args := tool.Args(step.Args).Clone()
	rec := StepRecord{
		Index:       index,
		Description: step.Description,
		Tool:        step.Tool,
		Args:        args,
	}

	ctx, span := e.tracer.Start(ctx, "agent.step", trace.WithAttributes(
		attribute.Int("step.index", index),
		attribute.String("tool.name", step.Tool),
	))
	defer span.End()

	start := time.Now()
	for {
		rec.Attempts++
		rec.Output = e.registry.Dispatch(ctx, step.Tool, args.Clone())
		if !retryable(rec.Output) || rec.Attempts > e.retries || !e.wait(ctx) {
			break
		}
		e.logger.Info("retrying step",
			"step", index, "tool", step.Tool, "attempt", rec.Attempts+1, "condition", rec.Output.Condition)
	}
	rec.Duration = time.Since(start)

	span.SetAttributes(attribute.Int("step.attempts", rec.Attempts))
	if rec.Output.IsError {
		span.SetStatus(codes.Error, string(rec.Output.Condition))
	}
	return rec
}

// wait sleeps for the backoff and reports false if ctx ended first.
func (e *stepExecutor) wait(ctx context.Context) bool {
	timer := time.NewTimer(e.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

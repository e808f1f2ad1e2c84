// Package tool defines the capability contract every toolclaw tool implements
// and the Registry that dispatches calls to them. The Registry is the single
// choke point for argument validation, call statistics, auditing and fault
// isolation: no tool failure propagates past Dispatch.
package tool

import (
	"context"
	"fmt"
)

// Tool is the interface that all toolclaw tools must implement.
type Tool interface {
	// Name returns the unique, lowercase identifier for this tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Version returns the tool's version string.
	Version() string

	// Schema returns the typed argument schema checked before Validate.
	Schema() Schema

	// Validate is a best-effort pre-check of the arguments. Execute must
	// still defend its own invariants.
	Validate(args Args) error

	// Execute runs the tool. Handled failures are reported through
	// Output.IsError; a returned error is treated as a fault.
	Execute(ctx context.Context, args Args) (Output, error)
}

// Condition classifies a failed Output.
type Condition string

// Condition values, one per error class a dispatch can end in.
const (
	ConditionNone        Condition = ""
	ConditionValidation  Condition = "validation"
	ConditionSafety      Condition = "safety"
	ConditionExecution   Condition = "execution"
	ConditionTimeout     Condition = "timeout"
	ConditionUnavailable Condition = "unavailable"
	ConditionNotFound    Condition = "not_found"
	ConditionRateLimited Condition = "rate_limited"
)

// Output is the result of a tool execution.
type Output struct {
	// Content is the human-readable result text.
	Content string `json:"content"`

	// IsError indicates whether the output represents an error condition.
	IsError bool `json:"is_error,omitempty"`

	// Condition names the error class when IsError is set.
	Condition Condition `json:"condition,omitempty"`
}

// Text returns a successful Output.
func Text(content string) Output {
	return Output{Content: content}
}

// Textf returns a successful Output built from a format string.
func Textf(format string, args ...any) Output {
	return Output{Content: fmt.Sprintf(format, args...)}
}

// Fail returns a failed Output of the given condition.
func Fail(cond Condition, format string, args ...any) Output {
	if cond == ConditionNone {
		cond = ConditionExecution
	}
	return Output{
		Content:   fmt.Sprintf(format, args...),
		IsError:   true,
		Condition: cond,
	}
}

// Descriptor is the identity of a registered tool.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Schema      Schema `json:"schema"`
}

// Describe returns the descriptor of t.
func Describe(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Version:     t.Version(),
		Schema:      t.Schema(),
	}
}

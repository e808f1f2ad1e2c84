package sandbox

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the grammar a snippet is parsed with.
type Mode string

const (
	// ModeStatements runs a file of statements. The value of a global
	// named "_" becomes the result value.
	ModeStatements Mode = "statements"

	// ModeExpression evaluates a single expression.
	ModeExpression Mode = "expression"
)

// ParseMode maps user input to a Mode. "exec" and "eval" are accepted as
// aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "statements", "exec":
		return ModeStatements, nil
	case "expression", "eval":
		return ModeExpression, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want statements or expression)", s)
	}
}

// Request is one snippet to execute. It is also the JSON body sent to
// out-of-process workers.
type Request struct {
	Code      string        `json:"code"`
	Mode      Mode          `json:"mode"`
	Timeout   time.Duration `json:"timeout"`
	MaxSteps  uint64        `json:"max_steps"`
	MaxOutput int           `json:"max_output"`
}

func (r Request) withDefaults() Request {
	if r.Mode == "" {
		r.Mode = ModeStatements
	}
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	if r.MaxSteps == 0 {
		r.MaxSteps = DefaultMaxSteps
	}
	if r.MaxOutput <= 0 {
		r.MaxOutput = DefaultMaxOutput
	}
	return r
}

// Result is what a snippet produced. Stdout and Stderr are already capped.
type Result struct {
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Value    string        `json:"value,omitempty"`
	HasValue bool          `json:"has_value,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Empty reports whether the snippet produced no output and no value.
func (r Result) Empty() bool {
	return r.Stdout == "" && r.Stderr == "" && !r.HasValue
}

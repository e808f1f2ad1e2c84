// Package plan defines the multi-step plan consumed by the orchestrator,
// and the decoders that read it from JSON, YAML and free text.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/security"
)

// ErrNoPlan is returned when no plan object can be found in the input.
var ErrNoPlan = errors.New("no plan found")

// Plan is an ordered list of tool invocations with the planner's notes.
type Plan struct {
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Analysis string `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Steps    []Step `json:"steps" yaml:"steps"`
}

// Step is one tool invocation.
type Step struct {
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Tool        string         `json:"tool" yaml:"tool"`
	Args        map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// Len returns the number of steps.
func (p Plan) Len() int { return len(p.Steps) }

// Tools returns the tool names referenced by the plan, in step order.
func (p Plan) Tools() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Tool
	}
	return names
}

// Decode reads a JSON plan after checking its size and nesting depth.
func Decode(data []byte) (Plan, error) {
	if err := security.ValidatePayload(data, 0, 0); err != nil {
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("plan: decode json: %w", err)
	}
	return p, nil
}

// DecodeYAML reads a YAML plan after checking its size.
func DecodeYAML(data []byte) (Plan, error) {
	if err := security.ValidatePayloadSize(data, 0); err != nil {
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("plan: decode yaml: %w", err)
	}
	return p, nil
}

// Load reads a plan file. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON.
func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-provided
	if err != nil {
		return Plan{}, fmt.Errorf("plan: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

// Parse extracts the first JSON object that decodes as a plan from free
// text, such as a model response wrapped in prose or code fences.
func Parse(text string) (Plan, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		p, err := Decode(raw)
		if err != nil {
			continue
		}
		if p.Steps == nil && p.Summary == "" && p.Analysis == "" {
			continue
		}
		return p, nil
	}
	return Plan{}, ErrNoPlan
}

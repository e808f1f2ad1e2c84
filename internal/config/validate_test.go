package config

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/tool"
)

// stubModule is a basic module for testing.
type stubModule struct {
	id string
}

func (m *stubModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  core.ModuleID(m.id),
		New: func() core.Module { return &stubModule{id: m.id} },
	}
}

func registerStub(t *testing.T, id string) {
	t.Helper()
	core.RegisterModule(&stubModule{id: id})
}

func TestValidate_Valid(t *testing.T) {
	id := t.Name() + ".mod"
	registerStub(t, id)
	cfg := &Config{
		Version: "1",
		Modules: map[string]yaml.Node{id: {}},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	id := t.Name() + ".mod"
	registerStub(t, id)
	cfg := &Config{
		Modules: map[string]yaml.Node{id: {}},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for missing version")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Errorf("error should mention version: %v", err)
	}
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	id := t.Name() + ".mod"
	registerStub(t, id)
	cfg := &Config{
		Version: "99",
		Modules: map[string]yaml.Node{id: {}},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("error should mention unsupported: %v", err)
	}
}

func TestValidate_EmptyModules(t *testing.T) {
	cfg := &Config{
		Version: "1",
		Modules: map[string]yaml.Node{},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for empty modules")
	}
	if !strings.Contains(err.Error(), "at least one") {
		t.Errorf("error should mention at least one module: %v", err)
	}
}

func TestValidate_UnknownModule(t *testing.T) {
	cfg := &Config{
		Version: "1",
		Modules: map[string]yaml.Node{"unknown.mod": {}},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown module")
	}
	if !strings.Contains(err.Error(), "unknown.mod") {
		t.Errorf("error should mention module ID: %v", err)
	}
}

func TestValidate_MultipleUnknown(t *testing.T) {
	cfg := &Config{
		Version: "1",
		Modules: map[string]yaml.Node{
			"bad.one": {},
			"bad.two": {},
		},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown modules")
	}
	if !strings.Contains(err.Error(), "bad.one") || !strings.Contains(err.Error(), "bad.two") {
		t.Errorf("error should mention both modules: %v", err)
	}
}

func TestValidate_Sections(t *testing.T) {
	id := t.Name() + ".mod"
	registerStub(t, id)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative max steps", func(c *Config) { c.Agent.MaxSteps = -1 }, "agent.max_steps"},
		{"negative timeout", func(c *Config) { c.Agent.Timeout = -time.Second }, "agent.timeout"},
		{"negative history", func(c *Config) { c.Agent.HistorySize = -5 }, "agent.history_size"},
		{"policy conflict", func(c *Config) {
			c.Security.Policy = tool.Policy{Allow: []string{"calculator"}, Deny: []string{"calculator"}}
		}, "appears in both"},
		{"bad credential name", func(c *Config) { c.Security.Credentials = []string{"OK_NAME", "bad-name"} }, "credentials[1]"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad sample ratio", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 }, "sample_ratio"},
		{"scalar module config", func(c *Config) {
			c.Modules[id] = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "yes"}
		}, "must be a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Version: "1", Modules: map[string]yaml.Node{id: {}}}
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := &Config{
		Version: "2",
		Agent:   AgentConfig{Config: agent.Config{MaxSteps: -1}},
		Modules: map[string]yaml.Node{"nope.mod": {}},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"unsupported version", "nope.mod", "max_steps"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

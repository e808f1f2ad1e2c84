// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for toolclaw.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/telemetry"
	"github.com/flemzord/toolclaw/internal/tool"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir holds persistent state (history database, audit log).
	// Empty means ~/.local/share/toolclaw.
	DataDir string `yaml:"data_dir,omitempty"`

	// Workspace is the directory tools operate in. Empty means the
	// current working directory.
	Workspace string `yaml:"workspace,omitempty"`

	Log       LogConfig       `yaml:"log"`
	Agent     AgentConfig     `yaml:"agent"`
	Security  SecurityConfig  `yaml:"security"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "tool.calculator").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level"`
}

// AgentConfig configures the orchestrator loop.
type AgentConfig struct {
	agent.Config `yaml:",inline"`

	// HistorySize bounds the in-memory history used when no history
	// module is configured.
	HistorySize int `yaml:"history_size"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// Policy decides which tools may be dispatched.
	Policy tool.Policy `yaml:"policy"`

	// RateLimits bounds tool calls, runs and API requests per minute.
	RateLimits security.RateLimitConfig `yaml:"rate_limits"`

	// AuditLog is the JSONL audit file path. Relative paths are resolved
	// against DataDir. Empty disables the audit log.
	AuditLog string `yaml:"audit_log"`

	// Credentials lists environment variables loaded into the credential
	// store. Their values are redacted from logs and audit events.
	Credentials []string `yaml:"credentials"`
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Tracing telemetry.TracingConfig `yaml:"tracing"`
}

package codeexec

import (
	"fmt"
	"time"

	"github.com/flemzord/toolclaw/internal/sandbox"
)

// Runner kinds accepted in configuration.
const (
	RunnerInProcess = "inprocess"
	RunnerProcess   = "process"
	RunnerDocker    = "docker"
)

// Config holds the code executor module configuration.
type Config struct {
	Enabled *bool `yaml:"enabled"`

	// Timeout is the default wall-clock limit. Defaults to 30s.
	Timeout string `yaml:"timeout"`

	// MaxTimeout caps the per-call timeout argument. Defaults to 60s.
	MaxTimeout string `yaml:"max_timeout"`

	// MaxOutputLength caps stdout and stderr separately. Defaults to 10000.
	MaxOutputLength int `yaml:"max_output_length"`

	// MaxSteps bounds interpreter steps per call.
	MaxSteps uint64 `yaml:"max_steps"`

	// Runner is inprocess, process or docker. Defaults to inprocess.
	Runner string `yaml:"runner"`

	Docker DockerConfig `yaml:"docker"`
}

// DockerConfig configures the container runner.
type DockerConfig struct {
	Image  string                 `yaml:"image"`
	Binary string                 `yaml:"binary"`
	Limits sandbox.ResourceLimits `yaml:"limits"`
}

func (c *Config) defaults() {
	if c.Enabled == nil {
		t := true
		c.Enabled = &t
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxTimeout == "" {
		c.MaxTimeout = "60s"
	}
	if c.MaxOutputLength == 0 {
		c.MaxOutputLength = sandbox.DefaultMaxOutput
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = sandbox.DefaultMaxSteps
	}
	if c.Runner == "" {
		c.Runner = RunnerInProcess
	}
}

func (c *Config) validate() error {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("tool.code_executor: invalid timeout %q", c.Timeout)
	}
	maxTimeout, err := time.ParseDuration(c.MaxTimeout)
	if err != nil || maxTimeout <= 0 {
		return fmt.Errorf("tool.code_executor: invalid max_timeout %q", c.MaxTimeout)
	}
	if timeout > maxTimeout {
		return fmt.Errorf("tool.code_executor: timeout %s exceeds max_timeout %s", timeout, maxTimeout)
	}
	if c.MaxOutputLength < 0 {
		return fmt.Errorf("tool.code_executor: max_output_length must be positive, got %d", c.MaxOutputLength)
	}
	switch c.Runner {
	case RunnerInProcess, RunnerProcess, RunnerDocker:
	default:
		return fmt.Errorf("tool.code_executor: unknown runner %q (want %s, %s or %s)",
			c.Runner, RunnerInProcess, RunnerProcess, RunnerDocker)
	}
	return nil
}

// parsedTimeout assumes validate passed.
func (c *Config) parsedTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return sandbox.DefaultTimeout
	}
	return d
}

func (c *Config) parsedMaxTimeout() time.Duration {
	d, err := time.ParseDuration(c.MaxTimeout)
	if err != nil {
		return 2 * sandbox.DefaultTimeout
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/core"
)

var envName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present, checks that
// all referenced module IDs exist in the registry and validates the agent,
// security and telemetry sections. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for _, id := range Resolve(cfg) {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
			continue
		}
		node := cfg.Modules[id]
		if node.Kind != 0 && node.Kind != yaml.MappingNode && !isNull(node) {
			errs = append(errs, fmt.Errorf("config: module %q: configuration must be a mapping", id))
		}
	}

	if cfg.Log.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			errs = append(errs, fmt.Errorf("config: log.level: invalid level %q", cfg.Log.Level))
		}
	}

	errs = append(errs, validateAgent(cfg.Agent)...)
	errs = append(errs, validateSecurity(cfg.Security)...)

	if r := cfg.Telemetry.Tracing.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.tracing.sample_ratio must be within [0, 1], got %v", r))
	}

	return errors.Join(errs...)
}

func isNull(n yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func validateAgent(a AgentConfig) []error {
	var errs []error
	if a.MaxSteps < 0 {
		errs = append(errs, errors.New("config: agent.max_steps must not be negative"))
	}
	if a.Timeout < 0 {
		errs = append(errs, errors.New("config: agent.timeout must not be negative"))
	}
	if a.Retries < 0 {
		errs = append(errs, errors.New("config: agent.retries must not be negative"))
	}
	if a.HistorySize < 0 {
		errs = append(errs, errors.New("config: agent.history_size must not be negative"))
	}
	return errs
}

func validateSecurity(sec SecurityConfig) []error {
	var errs []error

	if err := sec.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: security.%w", err))
	}

	for i, name := range sec.Credentials {
		if !envName.MatchString(name) {
			errs = append(errs, fmt.Errorf("config: security.credentials[%d]: invalid variable name %q", i, name))
		}
	}

	return errs
}

package config

import (
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/core"
)

// Resolve returns a sorted list of module IDs from the configuration.
// The deterministic order ensures consistent module loading.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Default returns the configuration used when no file is given: every
// registered tool module with its defaults and an in-memory history.
func Default() *Config {
	cfg := &Config{
		Version: "1",
		Modules: make(map[string]yaml.Node),
	}
	for _, info := range core.GetModulesByNamespace("tool") {
		cfg.Modules[string(info.ID)] = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	return cfg
}

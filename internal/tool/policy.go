package tool

import (
	"fmt"
	"strings"
)

// ApprovalLevel defines whether a tool invocation may run.
type ApprovalLevel string

const (
	// ApprovalAllow permits tool execution.
	ApprovalAllow ApprovalLevel = "allow"

	// ApprovalDeny blocks tool execution entirely. Denied calls still count
	// as failures in the tool's statistics.
	ApprovalDeny ApprovalLevel = "deny"
)

// Policy decides which registered tools may be dispatched. It is loaded
// from the security section of the configuration.
type Policy struct {
	// Default is the level for tools not explicitly listed. Empty means allow.
	Default ApprovalLevel `yaml:"default"`

	// Allow lists tools that may always execute.
	Allow []string `yaml:"allow"`

	// Deny lists tools that must never execute.
	Deny []string `yaml:"deny"`
}

// Resolve determines the effective approval level for a tool name.
// Resolution order: deny list > allow list > policy default > allow.
func (p Policy) Resolve(name string) ApprovalLevel {
	name = strings.TrimSpace(name)
	if toolInList(p.Deny, name) {
		return ApprovalDeny
	}
	if toolInList(p.Allow, name) {
		return ApprovalAllow
	}
	if p.Default != "" {
		return p.Default
	}
	return ApprovalAllow
}

// Validate checks that the policy has a valid default and that no tool
// appears in both lists.
func (p Policy) Validate() error {
	if p.Default != "" && !isValidApprovalLevel(p.Default) {
		return fmt.Errorf("policy: invalid default level %q", p.Default)
	}
	seen := make(map[string]ApprovalLevel)
	lists := []struct {
		names []string
		level ApprovalLevel
	}{
		{p.Allow, ApprovalAllow},
		{p.Deny, ApprovalDeny},
	}
	for _, l := range lists {
		for _, raw := range l.names {
			name := strings.TrimSpace(raw)
			if name == "" {
				return fmt.Errorf("policy: %s list contains empty tool name", l.level)
			}
			if existing, ok := seen[name]; ok && existing != l.level {
				return fmt.Errorf("%w: tool %q appears in both %q and %q",
					ErrToolInMultipleLists, name, existing, l.level)
			}
			seen[name] = l.level
		}
	}
	return nil
}

func toolInList(list []string, name string) bool {
	for _, candidate := range list {
		if strings.TrimSpace(candidate) == name {
			return true
		}
	}
	return false
}

func isValidApprovalLevel(level ApprovalLevel) bool {
	switch level {
	case ApprovalAllow, ApprovalDeny:
		return true
	default:
		return false
	}
}

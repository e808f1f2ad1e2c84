// Package calculator implements the tool.calculator module: arithmetic
// through the restricted expression interpreter.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/expr"
	"github.com/flemzord/toolclaw/internal/tool"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ tool.Tool         = (*Calculator)(nil)
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Reloader     = (*Module)(nil)
)

// maxPrecision bounds the precision argument.
const maxPrecision = 15

// Config holds the calculator module configuration.
type Config struct {
	Enabled *bool `yaml:"enabled"`

	// Precision is applied when a call does not pass one. Negative means
	// automatic formatting.
	Precision *int `yaml:"precision"`
}

func (c *Config) defaults() {
	if c.Enabled == nil {
		t := true
		c.Enabled = &t
	}
	if c.Precision == nil {
		p := expr.NoPrecision
		c.Precision = &p
	}
}

func (c *Config) validate() error {
	if *c.Precision > maxPrecision {
		return fmt.Errorf("tool.calculator: precision must be at most %d, got %d", maxPrecision, *c.Precision)
	}
	return nil
}

// Calculator evaluates arithmetic expressions.
type Calculator struct {
	tool.BaseTool
	precision int
}

// New returns a calculator that uses precision when a call passes none.
func New(precision int) *Calculator {
	return &Calculator{
		BaseTool: tool.BaseTool{
			ToolName:        "calculator",
			ToolDescription: "Evaluates arithmetic: + - * / // % **, comparisons, pi, e, and abs round max min sum sqrt sin cos tan log log10 exp ceil floor",
			ToolSchema: tool.Schema{Params: []tool.Param{
				{Name: "expression", Type: tool.TypeString, Required: true, NotBlank: true,
					Description: "Expression to evaluate, e.g. sqrt(16) + 2"},
				{Name: "precision", Type: tool.TypeInteger,
					Description: "Digits after the decimal point"},
			}},
		},
		precision: precision,
	}
}

// Validate implements tool.Tool.
func (c *Calculator) Validate(args tool.Args) error {
	if err := c.BaseTool.Validate(args); err != nil {
		return err
	}
	if p, ok := args.Int("precision"); ok && (p < 0 || p > maxPrecision) {
		return fmt.Errorf("%w: precision must be between 0 and %d", tool.ErrInvalidArgument, maxPrecision)
	}
	return nil
}

// Execute implements tool.Tool.
func (c *Calculator) Execute(_ context.Context, args tool.Args) (tool.Output, error) {
	expression := strings.TrimSpace(args.StringOr("expression", ""))
	if expression == "" {
		return tool.Fail(tool.ConditionValidation, "expression must not be empty"), nil
	}
	precision := c.precision
	if p, ok := args.Int("precision"); ok && p >= 0 && p <= maxPrecision {
		precision = p
	}

	result, err := expr.Evaluate(expression, precision)
	if err != nil {
		return tool.Fail(condition(err), "%v", err), nil
	}
	return tool.Textf("%s = %s", expression, result), nil
}

func condition(err error) tool.Condition {
	switch {
	case errors.Is(err, expr.ErrUnsupportedExpression):
		return tool.ConditionSafety
	case errors.Is(err, expr.ErrSyntax), errors.Is(err, expr.ErrArity):
		return tool.ConditionValidation
	default:
		return tool.ConditionExecution
	}
}

// Module registers the calculator into the tool registry.
type Module struct {
	config   Config
	logger   *slog.Logger
	registry *tool.Registry
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tool.calculator",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("tool.calculator: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	reg, ok := core.Service[*tool.Registry](ctx, core.ServiceToolRegistry)
	if !ok {
		return fmt.Errorf("tool.calculator: service %s not available", core.ServiceToolRegistry)
	}
	m.registry = reg
	return m.apply()
}

// Reload implements core.Reloader. The calculator is re-registered with
// the new precision, which resets its statistics.
func (m *Module) Reload(ctx *core.AppContext) error {
	var cfg Config
	if node, ok := ctx.ModuleConfig("tool.calculator"); ok {
		if err := node.Decode(&cfg); err != nil {
			return fmt.Errorf("tool.calculator: decode config: %w", err)
		}
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return err
	}
	m.config = cfg
	return m.apply()
}

func (m *Module) apply() error {
	if !*m.config.Enabled {
		m.logger.Info("calculator disabled")
		m.registry.Unregister("calculator")
		return nil
	}
	return m.registry.Register(New(*m.config.Precision))
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Package codeexec implements the tool.code_executor module: Starlark
// snippets run through a sandbox runner.
package codeexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/sandbox"
	"github.com/flemzord/toolclaw/internal/security"
	"github.com/flemzord/toolclaw/internal/tool"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ tool.Tool         = (*Executor)(nil)
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Options tune an Executor.
type Options struct {
	Timeout    time.Duration
	MaxTimeout time.Duration
	MaxOutput  int
	MaxSteps   uint64
}

// Executor runs code snippets on a sandbox.Runner.
type Executor struct {
	tool.BaseTool
	runner sandbox.Runner
	opts   Options
}

// New returns an Executor backed by runner.
func New(runner sandbox.Runner, opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = sandbox.DefaultTimeout
	}
	if opts.MaxTimeout < opts.Timeout {
		opts.MaxTimeout = opts.Timeout
	}
	return &Executor{
		BaseTool: tool.BaseTool{
			ToolName: "code_executor",
			ToolDescription: "Runs a Starlark (Python dialect) snippet in a sandbox. print() goes to stdout, " +
				"warn() to stderr, and a global named _ is returned as the value. Modules: " +
				strings.Join(sandbox.ModuleNames(), ", "),
			ToolSchema: tool.Schema{Params: []tool.Param{
				{Name: "code", Type: tool.TypeString, Required: true, NotBlank: true,
					Description: "Code to run"},
				{Name: "mode", Type: tool.TypeString, Enum: []string{
					string(sandbox.ModeStatements), string(sandbox.ModeExpression), "exec", "eval",
				}, Description: "statements (default) or expression"},
				{Name: "timeout", Type: tool.TypeNumber,
					Description: "Timeout in seconds, capped by configuration"},
			}},
		},
		runner: runner,
		opts:   opts,
	}
}

// Validate implements tool.Tool.
func (e *Executor) Validate(args tool.Args) error {
	if err := e.BaseTool.Validate(args); err != nil {
		return err
	}
	if secs, ok := args.Float("timeout"); ok && (secs <= 0 || math.IsNaN(secs)) {
		return fmt.Errorf("%w: timeout must be positive", tool.ErrInvalidArgument)
	}
	return nil
}

// timeout resolves the per-call timeout argument against the configured cap.
func (e *Executor) timeout(args tool.Args) time.Duration {
	secs, ok := args.Float("timeout")
	if !ok || secs <= 0 || math.IsNaN(secs) {
		return e.opts.Timeout
	}
	if secs >= e.opts.MaxTimeout.Seconds() {
		return e.opts.MaxTimeout
	}
	return time.Duration(secs * float64(time.Second))
}

// Execute implements tool.Tool.
func (e *Executor) Execute(ctx context.Context, args tool.Args) (tool.Output, error) {
	code := args.StringOr("code", "")
	mode, err := sandbox.ParseMode(args.StringOr("mode", ""))
	if err != nil {
		return tool.Fail(tool.ConditionValidation, "%v", err), nil
	}

	res, err := e.runner.Run(ctx, sandbox.Request{
		Code:      code,
		Mode:      mode,
		Timeout:   e.timeout(args),
		MaxSteps:  e.opts.MaxSteps,
		MaxOutput: e.opts.MaxOutput,
	})
	if err != nil {
		return failure(res, err), nil
	}
	return tool.Text(render(res)), nil
}

func failure(res sandbox.Result, err error) tool.Output {
	switch {
	case errors.Is(err, sandbox.ErrRejected):
		return tool.Fail(tool.ConditionSafety, "%v", err)
	case errors.Is(err, sandbox.ErrSyntax):
		return tool.Fail(tool.ConditionValidation, "%v", err)
	case errors.Is(err, sandbox.ErrTimeout):
		return tool.Fail(tool.ConditionTimeout, "%v", err)
	case errors.Is(err, sandbox.ErrUnavailable):
		return tool.Fail(tool.ConditionUnavailable, "%v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "execution failed (%s): %v", formatElapsed(res.Elapsed), err)
	if res.Stdout != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", strings.TrimRight(res.Stdout, "\n"))
	}
	if res.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", strings.TrimRight(res.Stderr, "\n"))
	}
	return tool.Fail(tool.ConditionExecution, "%s", b.String())
}

func render(res sandbox.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "execution succeeded (%s)", formatElapsed(res.Elapsed))
	if res.Empty() {
		b.WriteString("\nexecution finished with no output")
		return b.String()
	}
	if res.Stdout != "" {
		fmt.Fprintf(&b, "\nstdout:\n%s", strings.TrimRight(res.Stdout, "\n"))
	}
	if res.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", strings.TrimRight(res.Stderr, "\n"))
	}
	if res.HasValue {
		fmt.Fprintf(&b, "\nvalue: %s", res.Value)
	}
	return b.String()
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// NewRunner builds the runner named by cfg.Runner.
func NewRunner(cfg Config, creds *security.CredentialStore) (sandbox.Runner, error) {
	switch cfg.Runner {
	case RunnerInProcess, "":
		return sandbox.NewInProcessRunner(), nil
	case RunnerProcess:
		return &sandbox.ProcessRunner{Credentials: creds}, nil
	case RunnerDocker:
		return sandbox.NewDockerRunner(cfg.Docker.Image, cfg.Docker.Binary, cfg.Docker.Limits), nil
	default:
		return nil, fmt.Errorf("unknown runner %q", cfg.Runner)
	}
}

// Module registers the code executor into the tool registry.
type Module struct {
	config Config
	logger *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "tool.code_executor",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("tool.code_executor: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger
	if !*m.config.Enabled {
		m.logger.Info("code executor disabled")
		return nil
	}
	if err := m.config.validate(); err != nil {
		return err
	}

	reg, ok := core.Service[*tool.Registry](ctx, core.ServiceToolRegistry)
	if !ok {
		return fmt.Errorf("tool.code_executor: service %s not available", core.ServiceToolRegistry)
	}
	creds, _ := core.Service[*security.CredentialStore](ctx, core.ServiceCredentials)

	runner, err := NewRunner(m.config, creds)
	if err != nil {
		return fmt.Errorf("tool.code_executor: %w", err)
	}
	m.logger.Info("code executor provisioned",
		"runner", m.config.Runner,
		"timeout", m.config.Timeout,
		"max_timeout", m.config.MaxTimeout)

	return reg.Register(New(runner, Options{
		Timeout:    m.config.parsedTimeout(),
		MaxTimeout: m.config.parsedMaxTimeout(),
		MaxOutput:  m.config.MaxOutputLength,
		MaxSteps:   m.config.MaxSteps,
	}))
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

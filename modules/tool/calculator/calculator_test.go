package calculator_test

import (
	"testing"

	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/expr"
	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/flemzord/toolclaw/modules/tool/calculator"
	"gopkg.in/yaml.v3"
)

func dispatch(t *testing.T, args tool.Args) tool.Output {
	t.Helper()
	reg := tool.NewRegistry()
	if err := reg.Register(calculator.New(expr.NoPrecision)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg.Dispatch(t.Context(), "calculator", args)
}

func TestCalculator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args tool.Args
		want string
	}{
		{"sqrt plus two", tool.Args{"expression": "sqrt(16) + 2"}, "sqrt(16) + 2 = 6"},
		{"implicit multiplication", tool.Args{"expression": "2(3+4)"}, "2(3+4) = 14"},
		{"visual operators", tool.Args{"expression": "6 × 7"}, "6 × 7 = 42"},
		{"precision", tool.Args{"expression": "pi", "precision": 3}, "pi = 3.142"},
		{"precision from JSON", tool.Args{"expression": "1/3", "precision": float64(2)}, "1/3 = 0.33"},
		{"comparison", tool.Args{"expression": "1 < 2 < 3"}, "1 < 2 < 3 = True"},
		{"large", tool.Args{"expression": "2 ** 20"}, "2 ** 20 = 1048576"},
		{"trims input", tool.Args{"expression": "  1 + 1 "}, "1 + 1 = 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := dispatch(t, tt.args)
			if out.IsError {
				t.Fatalf("unexpected failure: %s", out.Content)
			}
			if out.Content != tt.want {
				t.Fatalf("got %q, want %q", out.Content, tt.want)
			}
		})
	}
}

func TestCalculator_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args tool.Args
		want tool.Condition
	}{
		{"division by zero", tool.Args{"expression": "1/0"}, tool.ConditionExecution},
		{"domain", tool.Args{"expression": "sqrt(-1)"}, tool.ConditionExecution},
		{"unsupported name", tool.Args{"expression": "__import__('os')"}, tool.ConditionSafety},
		{"syntax", tool.Args{"expression": "(1 + 2"}, tool.ConditionValidation},
		{"missing expression", tool.Args{}, tool.ConditionValidation},
		{"blank expression", tool.Args{"expression": "  "}, tool.ConditionValidation},
		{"precision out of range", tool.Args{"expression": "1", "precision": 40}, tool.ConditionValidation},
		{"unknown argument", tool.Args{"expression": "1", "mode": "x"}, tool.ConditionValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := dispatch(t, tt.args)
			if !out.IsError {
				t.Fatalf("expected failure, got %q", out.Content)
			}
			if out.Condition != tt.want {
				t.Fatalf("condition = %q, want %q (%s)", out.Condition, tt.want, out.Content)
			}
		})
	}
}

func TestCalculator_ConfiguredPrecision(t *testing.T) {
	t.Parallel()

	out, err := calculator.New(2).Execute(t.Context(), tool.Args{"expression": "2/3"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Content != "2/3 = 0.67" {
		t.Fatalf("got %q", out.Content)
	}
}

func TestModule_RegistersTool(t *testing.T) {
	t.Parallel()

	reg := tool.NewRegistry()
	ctx := core.NewAppContext(nil, t.TempDir(), t.TempDir())
	ctx.RegisterService(core.ServiceToolRegistry, reg)

	if _, err := ctx.LoadModule("tool.calculator"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if _, ok := reg.Get("calculator"); !ok {
		t.Fatal("calculator not registered")
	}
}

func TestModule_Disabled(t *testing.T) {
	t.Parallel()

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("enabled: false"), &node); err != nil {
		t.Fatal(err)
	}
	reg := tool.NewRegistry()
	ctx := core.NewAppContext(nil, t.TempDir(), t.TempDir()).
		WithModuleConfigs(map[string]yaml.Node{"tool.calculator": *node.Content[0]})
	ctx.RegisterService(core.ServiceToolRegistry, reg)

	if _, err := ctx.LoadModule("tool.calculator"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if len(reg.Names()) != 0 {
		t.Fatalf("disabled module registered %v", reg.Names())
	}
}

func TestModule_MissingRegistry(t *testing.T) {
	t.Parallel()

	ctx := core.NewAppContext(nil, t.TempDir(), t.TempDir())
	if _, err := ctx.LoadModule("tool.calculator"); err == nil {
		t.Fatal("expected error without a tool registry service")
	}
}

func TestModule_Reload(t *testing.T) {
	t.Parallel()

	reg := tool.NewRegistry()
	appCtx := core.NewAppContext(nil, t.TempDir(), t.TempDir())
	appCtx.RegisterService(core.ServiceToolRegistry, reg)
	mod, err := appCtx.LoadModule("tool.calculator")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("precision: 1"), &node); err != nil {
		t.Fatal(err)
	}
	reloadCtx := appCtx.WithModuleConfigs(map[string]yaml.Node{"tool.calculator": *node.Content[0]})
	if err := mod.(core.Reloader).Reload(reloadCtx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := reg.Call(t.Context(), "calculator", tool.Args{"expression": "2/3"}); got != "2/3 = 0.7" {
		t.Errorf("after reload got %q, want 2/3 = 0.7", got)
	}

	if err := yaml.Unmarshal([]byte("enabled: false"), &node); err != nil {
		t.Fatal(err)
	}
	reloadCtx = appCtx.WithModuleConfigs(map[string]yaml.Node{"tool.calculator": *node.Content[0]})
	if err := mod.(core.Reloader).Reload(reloadCtx); err != nil {
		t.Fatalf("Reload disabled: %v", err)
	}
	if _, ok := reg.Get("calculator"); ok {
		t.Error("calculator still registered after being disabled")
	}
}

func TestModule_ReloadInvalidKeepsTool(t *testing.T) {
	t.Parallel()

	reg := tool.NewRegistry()
	appCtx := core.NewAppContext(nil, t.TempDir(), t.TempDir())
	appCtx.RegisterService(core.ServiceToolRegistry, reg)
	mod, err := appCtx.LoadModule("tool.calculator")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("precision: 99"), &node); err != nil {
		t.Fatal(err)
	}
	reloadCtx := appCtx.WithModuleConfigs(map[string]yaml.Node{"tool.calculator": *node.Content[0]})
	if err := mod.(core.Reloader).Reload(reloadCtx); err == nil {
		t.Fatal("expected error for out-of-range precision")
	}
	if _, ok := reg.Get("calculator"); !ok {
		t.Error("calculator unregistered by a failed reload")
	}
}

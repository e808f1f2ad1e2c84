package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/toolclaw/internal/tool"
)

const testConfig = `version: "1"
modules:
  tool.calculator: {}
`

// execute runs the CLI with args against a temporary config, data dir and
// workspace, returning stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "toolclaw.yaml")
	if err := os.WriteFile(cfg, []byte(testConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{
		"--config", cfg,
		"--data-dir", filepath.Join(dir, "data"),
		"--workspace", dir,
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd_ListsModules(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{"toolclaw dev", "tool.calculator", "gateway.http", "scheduler.cron", "memory.sqlite"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestToolsCmd_JSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "tools", "--json")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	var descs []tool.Descriptor
	if err := json.Unmarshal([]byte(out), &descs); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(descs) != 1 || descs[0].Name != "calculator" {
		t.Errorf("descriptors = %+v, want only calculator", descs)
	}
}

func TestToolsCallCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "tools", "call", "calculator", `{"expression":"6 * 7"}`)
	if err != nil {
		t.Fatalf("tools call: %v", err)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("output = %q, want 42", out)
	}
}

func TestToolsCallCmd_UnknownTool(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "tools", "call", "nope")
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !strings.Contains(out, "not found") {
		t.Errorf("output = %q", out)
	}
}

func TestToolsCallCmd_BadArguments(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "tools", "call", "calculator", `[1, 2]`); err == nil {
		t.Error("expected error for non-object arguments")
	}
}

func TestRunCmd_PlanFile(t *testing.T) {
	t.Parallel()

	planPath := filepath.Join(t.TempDir(), "plan.yaml")
	planYAML := "steps:\n  - tool: calculator\n    args:\n      expression: \"6 * 7\"\n"
	if err := os.WriteFile(planPath, []byte(planYAML), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	out, err := execute(t, "run", "--plan", planPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	for _, want := range []string{"step 1:", "42", "completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCmd_InlinePlanJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "run", "--json",
		`{"steps":[{"tool":"calculator","args":{"expression":"1 + 1"}}]}`)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var res struct {
		State         string `json:"state"`
		StepsExecuted int    `json:"steps_executed"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.State != "completed" || res.StepsExecuted != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestRunCmd_RequiresInput(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "run"); err == nil {
		t.Error("expected error without input or plan")
	}
}

func TestRunCmd_PlanErrorFails(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "run", "no plan in here")
	if err == nil {
		t.Fatal("expected error for input without a plan")
	}
	if !strings.Contains(err.Error(), "plan_error") {
		t.Errorf("error = %v, want plan_error", err)
	}
	if !strings.Contains(out, "failed") {
		t.Errorf("output = %q", out)
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "no executions recorded") {
		t.Errorf("output = %q", out)
	}
}

func TestHistoryCmd_NegativeLimit(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "history", "--limit", "-1"); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestConfigCheckCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "config", "check")
	if err != nil {
		t.Fatalf("config check: %v", err)
	}
	if !strings.Contains(out, "Configuration OK") || !strings.Contains(out, "tool.calculator") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigShowCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "tool.calculator") {
		t.Errorf("output = %q", out)
	}
}

func TestReadInput(t *testing.T) {
	t.Parallel()

	got, err := readInput(strings.NewReader("  from stdin\n"), []string{"-"})
	if err != nil {
		t.Fatalf("readInput: %v", err)
	}
	if got != "from stdin" {
		t.Errorf("stdin input = %q", got)
	}

	got, _ = readInput(nil, []string{"add", "two", "numbers"})
	if got != "add two numbers" {
		t.Errorf("args input = %q", got)
	}
}

func TestAbbreviate(t *testing.T) {
	t.Parallel()

	if got := abbreviate("short", 10); got != "short" {
		t.Errorf("abbreviate short = %q", got)
	}
	if got := abbreviate("héllo wörld", 6); got != "héllo…" {
		t.Errorf("abbreviate long = %q", got)
	}
}

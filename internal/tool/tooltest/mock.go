// Package tooltest provides test helpers and mocks for the tool package.
package tooltest

import (
	"context"
	"sync"

	"github.com/flemzord/toolclaw/internal/tool"
)

// MockTool is a configurable mock implementation of tool.Tool.
type MockTool struct {
	NameFunc        func() string
	DescriptionFunc func() string
	VersionFunc     func() string
	SchemaFunc      func() tool.Schema
	ValidateFunc    func(args tool.Args) error
	ExecuteFunc     func(ctx context.Context, args tool.Args) (tool.Output, error)

	mu           sync.Mutex
	ExecuteCalls int
	LastArgs     tool.Args
}

// Name implements tool.Tool.
func (m *MockTool) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock_tool"
}

// Description implements tool.Tool.
func (m *MockTool) Description() string {
	if m.DescriptionFunc != nil {
		return m.DescriptionFunc()
	}
	return "a mock tool"
}

// Version implements tool.Tool.
func (m *MockTool) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "0.0.0"
}

// Schema implements tool.Tool. The default schema accepts any argument.
func (m *MockTool) Schema() tool.Schema {
	if m.SchemaFunc != nil {
		return m.SchemaFunc()
	}
	return tool.Schema{AllowExtra: true}
}

// Validate implements tool.Tool.
func (m *MockTool) Validate(args tool.Args) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(args)
	}
	return nil
}

// Execute implements tool.Tool.
func (m *MockTool) Execute(ctx context.Context, args tool.Args) (tool.Output, error) {
	m.mu.Lock()
	m.ExecuteCalls++
	m.LastArgs = args
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, args)
	}
	return tool.Output{Content: "ok"}, nil
}

// Calls returns the number of Execute calls so far.
func (m *MockTool) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// SimpleTool creates a minimal tool that answers "executed: <name>".
func SimpleTool(name string) *MockTool {
	return &MockTool{
		NameFunc:        func() string { return name },
		DescriptionFunc: func() string { return "simple test tool: " + name },
		ExecuteFunc: func(_ context.Context, _ tool.Args) (tool.Output, error) {
			return tool.Output{Content: "executed: " + name}, nil
		},
	}
}

// EchoTool creates a tool that returns its "text" argument, or fails with
// an execution condition when "fail" is true.
func EchoTool(name string) *MockTool {
	return &MockTool{
		NameFunc: func() string { return name },
		SchemaFunc: func() tool.Schema {
			return tool.Schema{Params: []tool.Param{
				{Name: "text", Type: tool.TypeString},
				{Name: "fail", Type: tool.TypeBoolean},
			}}
		},
		ExecuteFunc: func(_ context.Context, args tool.Args) (tool.Output, error) {
			if fail, _ := args.Bool("fail"); fail {
				return tool.Fail(tool.ConditionExecution, "echo failed"), nil
			}
			return tool.Text(args.StringOr("text", "")), nil
		},
	}
}

// Interface guard.
var _ tool.Tool = (*MockTool)(nil)

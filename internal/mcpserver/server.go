// Package mcpserver exposes the tool registry as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/toolclaw/internal/tool"
)

// Server publishes every registered tool. Calls go through
// Registry.Dispatch, so policy, rate limits, audit and statistics apply
// exactly as for plan steps.
type Server struct {
	registry *tool.Registry
	logger   *slog.Logger
	mcp      *server.MCPServer
}

// New creates a server and publishes the tools currently registered.
func New(registry *tool.Registry, name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		registry: registry,
		logger:   logger.With("component", "mcpserver"),
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.Sync()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Sync republishes the registry's tools, replacing any published earlier.
func (s *Server) Sync() {
	descs := s.registry.Descriptors()
	tools := make([]server.ServerTool, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, server.ServerTool{
			Tool:    mcp.NewToolWithRawSchema(d.Name, d.Description, d.Schema.JSONSchema()),
			Handler: s.handler(d.Name),
		})
	}
	s.mcp.SetTools(tools...)
	s.logger.Debug("tools published", "count", len(tools))
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := s.registry.Dispatch(ctx, name, tool.Args(req.GetArguments()))
		return toResult(out), nil
	}
}

// toResult converts a tool Output. Tool failures are reported in-band with
// IsError set, never as protocol errors.
func toResult(out tool.Output) *mcp.CallToolResult {
	if out.IsError {
		return mcp.NewToolResultError(out.Content)
	}
	return mcp.NewToolResultText(out.Content)
}

// ServeStdio serves the protocol on in/out until ctx is cancelled or in is
// closed. Protocol errors are logged through the server's logger, never
// written to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("serving MCP over stdio", "tools", len(s.registry.Names()))
	return stdio.Listen(ctx, in, out)
}

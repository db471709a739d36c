// Package mcpserver exposes dead code analysis as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/gdcf/internal/service/analysis"
)

// Server wraps the MCP server and registers all gdcf tools.
type Server struct {
	server   *mcp.Server
	analysis *analysis.Service
	version  string
	tools    []*mcp.Tool
	prompts  []string
}

// NewServer creates a new MCP server with all gdcf tools registered. A nil
// svc uses the default analysis settings.
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	if svc == nil {
		svc = analysis.New()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gdcf",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, analysis: svc, version: version}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	unused := &mcp.Tool{
		Name:        "find_unused_functions",
		Description: describeUnused(),
	}
	mcp.AddTool(s.server, unused, s.handleFindUnused)

	testOnly := &mcp.Tool{
		Name:        "find_test_only_functions",
		Description: describeTestOnly(),
	}
	mcp.AddTool(s.server, testOnly, s.handleFindTestOnly)

	explain := &mcp.Tool{
		Name:        "explain_function",
		Description: describeExplain(),
	}
	mcp.AddTool(s.server, explain, s.handleExplain)

	s.tools = []*mcp.Tool{unused, testOnly, explain}
}

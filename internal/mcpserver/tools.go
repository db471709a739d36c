package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/gdcf/internal/output"
	"github.com/panbanda/gdcf/internal/service/analysis"
	outputSvc "github.com/panbanda/gdcf/internal/service/output"
	scannerSvc "github.com/panbanda/gdcf/internal/service/scanner"
	"github.com/panbanda/gdcf/pkg/models"
)

// AnalyzeInput is the input of the listing tools.
type AnalyzeInput struct {
	Path        string   `json:"path,omitempty" jsonschema:"Godot project root to scan. Defaults to the current directory."`
	TestDirs    []string `json:"test_dirs,omitempty" jsonschema:"Directories relative to the root whose files are test code. Replaces the default tests/ and test_*.gd rule."`
	ExcludeDirs []string `json:"exclude_dirs,omitempty" jsonschema:"Directory names to skip. Replaces the default (addons)."`
	Format      string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// ExplainInput is the input of explain_function.
type ExplainInput struct {
	AnalyzeInput
	Name string `json:"name" jsonschema:"Function name to look up."`
}

func getFormat(format string) output.Format {
	switch strings.ToLower(format) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func runOptions(in AnalyzeInput) analysis.Options {
	return analysis.Options{
		TestDirs:    in.TestDirs,
		ExcludeDirs: in.ExcludeDirs,
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := outputSvc.FormatData(format, data)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func runError(err error) (*mcp.CallToolResult, any, error) {
	var rootErr *scannerSvc.RootError
	if errors.As(err, &rootErr) {
		return toolError(rootErr.Error())
	}
	return toolError(fmt.Sprintf("analysis failed: %v", err))
}

func (s *Server) report(ctx context.Context, in AnalyzeInput) (*models.DeadCodeReport, error) {
	res, err := s.analysis.Run(ctx, in.Path, runOptions(in))
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

func (s *Server) handleFindUnused(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	r, err := s.report(ctx, in)
	if err != nil {
		return runError(err)
	}
	only := *r
	only.TestOnly = []models.Finding{}
	return toolResult(output.NewDeadCodeView(&only), getFormat(in.Format))
}

func (s *Server) handleFindTestOnly(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	r, err := s.report(ctx, in)
	if err != nil {
		return runError(err)
	}
	only := *r
	only.Unused = []models.Finding{}
	return toolResult(output.NewDeadCodeView(&only), getFormat(in.Format))
}

func (s *Server) handleExplain(ctx context.Context, req *mcp.CallToolRequest, in ExplainInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Name) == "" {
		return toolError("name is required")
	}
	ex, err := s.analysis.Explain(ctx, in.Path, in.Name, runOptions(in.AnalyzeInput))
	if err != nil {
		return runError(err)
	}
	return toolResult(output.NewExplanationView(ex), getFormat(in.Format))
}

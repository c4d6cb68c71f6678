// Package mcpserver exposes the analysis engine as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/relic/internal/service/analysis"
)

// Server wraps the MCP server and registers the relic tools.
type Server struct {
	server *mcp.Server
	svc    *analysis.Service
}

// NewServer creates a new MCP server backed by svc.
func NewServer(version string, svc *analysis.Service) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "relic",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, svc: svc}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_source",
		Description: describeAnalyzeSource(),
	}, s.handleAnalyzeSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_paths",
		Description: describeAnalyzePaths(),
	}, s.handleAnalyzePaths)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare_reports",
		Description: describeCompareReports(),
	}, s.handleCompareReports)
}

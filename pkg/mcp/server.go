// Package mcp exposes the analyzer operations over the Model Context
// Protocol on stdio. It is a thin adapter: all analysis happens in
// pkg/analyzer, and telemetry is applied here by decorating the tool
// handlers, never inside the core.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/propscope/pkg/analyzer"
	"github.com/gnana997/propscope/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for propscope.
type Server struct {
	mcpServer *server.MCPServer
	analyzer  *analyzer.Analyzer
	logger    *mcplog.Logger // nil disables tool-call logging
}

// NewServer creates an MCP server backed by the given Analyzer. logger
// may be nil to disable JSONL tool-call logging.
func NewServer(a *analyzer.Analyzer, logger *mcplog.Logger) *Server {
	s := &Server{analyzer: a, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("propscope", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: analyzeComponentsTool(), Handler: s.handleAnalyzeComponents},
		server.ServerTool{Tool: findPropUsagesTool(), Handler: s.handleFindPropUsages},
		server.ServerTool{Tool: getComponentDeclarationsTool(), Handler: s.handleGetComponentDeclarations},
		server.ServerTool{Tool: findMissingPropTool(), Handler: s.handleFindMissingProp},
		server.ServerTool{Tool: queryComponentPropsTool(), Handler: s.handleQueryComponentProps},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

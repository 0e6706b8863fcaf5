// Package mcp exposes chat export analysis as Model Context Protocol
// tools over stdio, so agent clients can inspect exports without
// invoking the CLI.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the name of the MCP server.
const ServerName = "chatlyze"

// Server wraps the MCP server with analysis tool handlers.
type Server struct {
	mcpServer *server.MCPServer
	handlers  *Handlers
}

// NewServer creates a new chatlyze MCP server advertising the given
// version.
func NewServer(version string) *Server {
	handlers := NewHandlers()

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		handlers:  handlers,
	}

	s.registerTools()

	return s
}

// registerTools registers all analysis tools with the MCP server.
func (s *Server) registerTools() {
	for _, tool := range ToolDefinitions() {
		switch tool.Name {
		case "chatlyze_analyze":
			s.mcpServer.AddTool(tool, s.handlers.HandleAnalyze)
		case "chatlyze_info":
			s.mcpServer.AddTool(tool, s.handlers.HandleInfo)
		case "chatlyze_best_lines":
			s.mcpServer.AddTool(tool, s.handlers.HandleBestLines)
		}
	}
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeContext starts the MCP server on stdio with a context.
func (s *Server) ServeContext(ctx context.Context) error {
	return server.ServeStdio(s.mcpServer, server.WithStdioContextFunc(func(_ context.Context) context.Context {
		return ctx
	}))
}

// GetMCPServer returns the underlying MCP server for testing.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

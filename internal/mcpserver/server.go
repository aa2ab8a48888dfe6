// Package mcpserver exposes scoring as MCP tools over stdio so AI
// coding tools can score documentation pages in place.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/docscore/docscore/internal/engine"
	"github.com/docscore/docscore/internal/version"
)

// New assembles the MCP server with the scoring tools registered.
func New(eng *engine.Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"docscore",
		version.Version,
		server.WithToolCapabilities(false),
	)

	scorePage := NewScorePageTool(eng)
	s.AddTool(scorePage.Definition(), scorePage.Handle)

	scoreURL := NewScoreURLTool(eng)
	s.AddTool(scoreURL.Definition(), scoreURL.Handle)

	return s
}

// ServeStdio runs the server on the stdio transport until EOF.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

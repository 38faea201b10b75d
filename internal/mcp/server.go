// Package mcp exposes the captured records to AI agents over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/aknsr/linecap/internal/records"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing record search tools.
type Server struct {
	recs *records.Store
	mcp  *server.MCPServer
}

// NewServer creates an MCP server over the given record store.
func NewServer(recs *records.Store) *Server {
	s := &Server{recs: recs}

	s.mcp = server.NewMCPServer(
		"linecap",
		Version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(searchRecordsTool, s.handleSearchRecords)
	s.mcp.AddTool(listRecordsTool, s.handleListRecords)
	s.mcp.AddTool(getRecordTool, s.handleGetRecord)

	return s
}

// Serve starts the MCP server on stdio. Stdout carries protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

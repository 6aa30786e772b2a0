// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/pinservice"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *pinservice.Service
	idx *index.DB
}

// New creates a new MCP server with all Raido tools registered. idx may be
// nil when the search index is not configured.
func New(svc *pinservice.Service, idx *index.DB) *Server {
	s := &Server{svc: svc, idx: idx}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_pins",
		mcp.WithDescription("List all pinned org entries in display order."),
	), s.listPins)

	s.mcp.AddTool(mcp.NewTool("search_pins",
		mcp.WithDescription("Full-text search through pinned entry titles, bodies, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPins)

	s.mcp.AddTool(mcp.NewTool("remove_pin",
		mcp.WithDescription("Unpin an entry: removes the pinned marking from its source org file."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Pin identifier (file stem + line number)")),
	), s.removePin)

	s.mcp.AddTool(mcp.NewTool("trigger_scan",
		mcp.WithDescription("Re-scan the configured root directories for pinned entries."),
		mcp.WithBoolean("full", mcp.Description("Clear the cache and re-parse every file")),
	), s.triggerScan)

	s.mcp.AddTool(mcp.NewTool("get_scan_stats",
		mcp.WithDescription("Return the last scan result and cache statistics."),
	), s.getScanStats)

	// Resource: how to mark an entry pinned.
	s.mcp.AddResource(
		mcp.NewResource("raido://pin-format", "Pin Marking Contract",
			mcp.WithResourceDescription("How org headlines are marked as pinned."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPinFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPins(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pins := s.svc.CurrentPins()
	out, _ := json.MarshalIndent(pins, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPins(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.idx == nil {
		return mcp.NewToolResultError("search index not configured"), nil
	}
	results, err := s.idx.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) removePin(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RemovePin(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) triggerScan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	full := req.GetBool("full", false)
	var res any
	if full {
		res = s.svc.ScanFull()
	} else {
		res = s.svc.Scan()
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getScanStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.GetStats(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPinFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://pin-format",
			MIMEType: "text/markdown",
			Text:     PinFormatContract,
		},
	}, nil
}

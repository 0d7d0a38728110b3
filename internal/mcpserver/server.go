// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Munin tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/router"
	"github.com/starford/munin/internal/storage"
)

// Server wraps the MCP server with Munin tools.
type Server struct {
	mcp   *server.MCPServer
	rt    *router.Router
	store storage.Provider
	db    *index.DB
}

// New creates a new MCP server with all Munin tools registered.
func New(rt *router.Router, store storage.Provider, db *index.DB) *Server {
	s := &Server{rt: rt, store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Munin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("route_note",
		mcp.WithDescription("Classify a free-text note and append it into the markdown memory tree. "+
			"Returns the category and destination path."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw note text")),
		mcp.WithString("source", mcp.Description("Source surface label (default: mcp)")),
		mcp.WithString("when", mcp.Description("ISO-8601 timestamp override (default: now)")),
	), s.routeNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through routed note content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a memory file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the file (e.g. topics/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List catalogued memory files, optionally filtered by category "+
			"(decision, todo, project, person, note, daily, index)."),
		mcp.WithString("category", mcp.Description("Optional category filter (empty for all)")),
	), s.listNotes)

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

func (s *Server) routeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source := "mcp"
	if v, err := req.RequireString("source"); err == nil && v != "" {
		source = v
	}
	var when time.Time
	if v, err := req.RequireString("when"); err == nil && v != "" {
		ts, parseErr := time.ParseInLocation("2006-01-02T15:04", v, time.Local)
		if parseErr != nil {
			ts, parseErr = time.Parse(time.RFC3339, v)
		}
		if parseErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid when timestamp: %s", v)), nil
		}
		when = ts
	}

	res, err := s.rt.Route(models.Note{Text: text, Source: source, When: when})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Keep the catalog current for immediate follow-up searches.
	if data, readErr := s.store.Read(res.Path); readErr == nil {
		_ = index.IndexFile(s.db, res.Path, data)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := ""
	if v, err := req.RequireString("category"); err == nil {
		category = v
	}

	rows, _, err := s.db.ListNotes(200, 0, category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", r.Path, r.Category, r.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes catalogued"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

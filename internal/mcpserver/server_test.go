package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/munin/internal/router"
	"github.com/starford/munin/internal/storage"
	"github.com/starford/munin/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestStore(t)
	db := testutil.TestDB(t)

	srv := New(router.New(store, nil), store, db)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "route_note":
		result, err = srv.routeNote(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRouteAndReadNote(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "route_note", map[string]interface{}{
		"text": "We decided to switch to the new vendor",
		"when": "2024-01-15T10:30",
	})
	text := resultText(r)
	if !strings.Contains(text, `"category": "decision"`) {
		t.Errorf("route result = %q", text)
	}
	if !strings.Contains(text, `"path": "decisions.md"`) {
		t.Errorf("route result = %q", text)
	}

	if _, err := store.Read("decisions.md"); err != nil {
		t.Fatalf("destination missing: %v", err)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"path": "decisions.md"})
	if !strings.Contains(resultText(r), "type: decision") {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestRouteNote_MissingText(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "route_note", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error result for missing text")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "route_note", map[string]interface{}{
		"text": "decided to adopt the zebra framework",
		"when": "2024-01-15T10:30",
	})

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "zebra"})
	if !strings.Contains(resultText(r), "decisions.md") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestListNotes_CategoryFilter(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "route_note", map[string]interface{}{
		"text": "decided on vendors",
		"when": "2024-01-15T10:30",
	})

	r := callTool(t, srv, "list_notes", map[string]interface{}{"category": "decision"})
	text := resultText(r)
	if !strings.Contains(text, "decisions.md") {
		t.Errorf("list result = %q", text)
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{"category": "person"})
	if resultText(r) != "no notes catalogued" {
		t.Errorf("empty list result = %q", resultText(r))
	}
}

func TestReadNote_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "missing.md"})
	if !r.IsError {
		t.Error("expected error result for missing file")
	}
}

// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note board as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/youhengzhou/bibo-notes/internal/boardservice"
)

// Server wraps the MCP server with board tools.
type Server struct {
	mcp *server.MCPServer
	svc *boardservice.Service
}

// New creates a new MCP server with all board tools registered.
func New(svc *boardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"bibo-notes",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Return the full board state: every note with its position, "+
			"size, hierarchy role, and content, plus the viewport offset."),
	), s.getBoard)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a standalone note at the given canvas position. "+
			"Content may carry a term and definition separated by a line containing only ---."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Canvas x coordinate (top-left)")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Canvas y coordinate (top-left)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content blob")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("export_outline",
		mcp.WithDescription("Export the board in the outline format. Read the format contract "+
			"first via the get_outline_contract tool or the bibo://outline-format resource."),
	), s.exportOutline)

	s.mcp.AddTool(mcp.NewTool("import_outline",
		mcp.WithDescription("Import outline text onto the board. Text MUST follow the canonical "+
			"outline format (## headings for stacks, - items for stacked notes, paragraph lines "+
			"for standalone notes). Set replace to clear the board first."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Outline text to import")),
		mcp.WithBoolean("replace", mcp.Description("Clear the board before importing")),
	), s.importOutline)

	s.mcp.AddTool(mcp.NewTool("get_outline_contract",
		mcp.WithDescription("Returns the canonical outline format contract. "+
			"Call this before importing outlines to ensure correct structure."),
	), s.getOutlineContract)

	s.mcp.AddTool(mcp.NewTool("shuffle_draw",
		mcp.WithDescription("Advance the flashcard review cycle on a stack: first call draws "+
			"a random card's term, the next reveals its definition."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the root note heading the stack")),
	), s.shuffleDraw)

	// Resource: outline format contract.
	s.mcp.AddResource(
		mcp.NewResource("bibo://outline-format", "Outline Format Contract",
			mcp.WithResourceDescription("Canonical outline format the board exports and imports."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readOutlineFormatResource,
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

func (s *Server) getBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.State(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := req.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := req.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note := s.svc.CreateNote(ctx, x, y, content)
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) exportOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.svc.ExportOutline(ctx)), nil
}

func (s *Server) importOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	replace := req.GetBool("replace", false)
	created := s.svc.ImportOutline(ctx, text, replace)
	return mcp.NewToolResultText(fmt.Sprintf("imported %d notes", created)), nil
}

func (s *Server) shuffleDraw(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.TriggerShuffle(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(card, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getOutlineContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OutlineFormatContract), nil
}

func (s *Server) readOutlineFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "bibo://outline-format",
			MIMEType: "text/markdown",
			Text:     OutlineFormatContract,
		},
	}, nil
}

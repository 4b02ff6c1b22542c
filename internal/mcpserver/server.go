// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes roamdeck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/cardservice"
)

const (
	markupURI   = "roamdeck://markup"
	searchLimit = 20
)

// Server wraps the MCP server with roamdeck tools.
type Server struct {
	mcp *server.MCPServer
	svc *cardservice.Service
}

// New creates a new MCP server with all roamdeck tools registered.
func New(svc *cardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Roamdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("import_export",
		mcp.WithDescription("Import a Roam JSON or ZIP export from disk into the note collection. "+
			"Returns the import summary."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .json or .zip export")),
	), s.importExport)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through imported cards."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("get_card",
		mcp.WithDescription("Read the card imported from a Roam block, including whether it was edited by hand."),
		mcp.WithString("block_id", mcp.Required(), mcp.Description("Roam block uid")),
	), s.getCard)

	s.mcp.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List imported cards, newest first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listCards)

	s.mcp.AddTool(mcp.NewTool("preview_block",
		mcp.WithDescription("Render block text the way it would be stored, without storing it. "+
			"Lines of the form 'name:: value' are treated as child command blocks. "+
			"Read the markup via get_markup_contract or the roamdeck://markup resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw block text")),
		mcp.WithString("page_title", mcp.Description("Title of the page the block sits on")),
	), s.previewBlock)

	s.mcp.AddTool(mcp.NewTool("get_markup_contract",
		mcp.WithDescription("Returns the block markup roamdeck turns into cloze cards. "+
			"Call this before drafting blocks meant to become cards."),
	), s.getMarkupContract)

	s.mcp.AddResource(
		mcp.NewResource(markupURI, "Block Markup",
			mcp.WithResourceDescription("Block markup that becomes cloze cards."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkupResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) importExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sum, err := s.svc.ImportPath(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(sum.String()), nil
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, searchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, err := req.RequireString("block_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.GetCard(ctx, blockID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", blockID)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card), nil
}

func (s *Server) listCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	offset := req.GetInt("offset", 0)
	items, total, err := s.svc.ListCards(ctx, limit, offset)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultText("no cards imported yet"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"cards": items, "total": total}), nil
}

func (s *Server) previewBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("page_title", "")
	return jsonResult(s.svc.Preview(text, title)), nil
}

func (s *Server) getMarkupContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkupContract), nil
}

func (s *Server) readMarkupResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      markupURI,
			MIMEType: "text/markdown",
			Text:     MarkupContract,
		},
	}, nil
}

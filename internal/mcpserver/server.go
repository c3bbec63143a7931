// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes deck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/katha/internal/apperr"
	"github.com/starford/katha/internal/navigation"
	"github.com/starford/katha/internal/slideservice"
)

// DeckFormatURI is the resource URI of the deck format contract.
const DeckFormatURI = "katha://deck-format"

// Server wraps the MCP server with deck tools.
type Server struct {
	mcp *server.MCPServer
	svc *slideservice.Service
}

// New creates a new MCP server with all deck tools registered.
func New(svc *slideservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Katha",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_slides",
		mcp.WithDescription("List every slide of the deck with its number, slug, title and layout."),
	), s.listSlides)

	s.mcp.AddTool(mcp.NewTool("get_slide",
		mcp.WithDescription("Resolve a slide by 1-based number or slug and return its metadata, "+
			"raw content, slots and rendered HTML. Unknown slugs return the first slide with not_found=true."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Slide number (e.g. 3) or slug (e.g. agenda)")),
		mcp.WithNumber("step", mcp.Description("Reveal step, default 0")),
	), s.getSlide)

	s.mcp.AddTool(mcp.NewTool("get_notes",
		mcp.WithDescription("Return the speaker notes of one slide."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Slide number or slug")),
	), s.getNotes)

	s.mcp.AddTool(mcp.NewTool("search_slides",
		mcp.WithDescription("Full-text search through slide titles, content and speaker notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results, default 20")),
	), s.searchSlides)

	s.mcp.AddTool(mcp.NewTool("get_deck_format",
		mcp.WithDescription("Returns the deck authoring format: separators, front-matter keys, "+
			"slots, notes and reveal steps. Read it before drafting slides."),
	), s.getDeckFormat)

	s.mcp.AddResource(
		mcp.NewResource(DeckFormatURI, "Deck Format",
			mcp.WithResourceDescription("Markdown slide deck authoring format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDeckFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrEmptyDeck) {
		return mcp.NewToolResultError("the deck has no slides")
	}
	return mcp.NewToolResultError(err.Error())
}

// location reads the location argument, accepting strings and numbers.
func location(req mcp.CallToolRequest) (navigation.Location, error) {
	switch v := req.GetArguments()["location"].(type) {
	case string:
		return navigation.ParseLocation(v), nil
	case float64:
		return navigation.ParseLocation(strconv.Itoa(int(v))), nil
	case nil:
		return navigation.Location{}, fmt.Errorf("required argument %q not found", "location")
	default:
		return navigation.Location{}, fmt.Errorf("argument %q must be a number or a slug", "location")
	}
}

func (s *Server) listSlides(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListSlides(ctx))
}

func (s *Server) getSlide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := location(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetSlide(ctx, loc, req.GetInt("step", 0))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(detail)
}

func (s *Server) getNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := location(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.Notes(ctx, loc)
	if err != nil {
		return toolError(err), nil
	}
	if notes.Notes == "" {
		return mcp.NewToolResultText(fmt.Sprintf("slide %d (%s) has no speaker notes", notes.Index, notes.Slug)), nil
	}
	return mcp.NewToolResultText(notes.Notes), nil
}

func (s *Server) searchSlides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getDeckFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DeckFormatContract), nil
}

func (s *Server) readDeckFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DeckFormatURI,
			MIMEType: "text/markdown",
			Text:     DeckFormatContract,
		},
	}, nil
}

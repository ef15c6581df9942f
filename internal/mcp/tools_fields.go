package mcpserver

import (
	"context"

	"orderexport/internal/catalogue"
	"orderexport/internal/picker"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerFieldTools() {
	s.mcp.AddTool(mcp.NewTool("search_fields",
		mcp.WithDescription("Search the field catalogue by label (case-insensitive substring). An empty query lists every field."),
		mcp.WithString("query", mcp.Description("Text to look for in field labels")),
	), s.handleSearchFields)

	s.mcp.AddTool(mcp.NewTool("suggest_fields",
		mcp.WithDescription("List catalogue fields matching a query that a template does not export yet"),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("query", mcp.Description("Text to look for in field labels")),
	), s.handleSuggestFields)
}

func (s *Server) handleSearchFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields := s.templates.Catalogue().Search(req.GetString("query", ""))
	if fields == nil {
		fields = []catalogue.Field{}
	}
	return jsonResult(fields)
}

func (s *Server) handleSuggestFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set, err := s.liveSet(req.GetString("template", ""))
	if err != nil {
		return nil, err
	}
	state := picker.Open(set).WithQuery(req.GetString("query", ""))
	fields := state.Suggestions(s.templates.Catalogue(), set)
	if fields == nil {
		fields = []catalogue.Field{}
	}
	return jsonResult(fields)
}

package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const catalogueURI = "orderexport://catalogue"

func (s *Server) registerResources() {
	// ── orderexport://catalogue ────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		catalogueURI,
		"Field Catalogue",
		mcp.WithResourceDescription("Every exportable field with its label, path and group"),
		mcp.WithMIMEType("application/json"),
	), s.handleCatalogueResource)
}

func (s *Server) handleCatalogueResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.templates.Catalogue().All(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      catalogueURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

package mcpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"orderexport/internal/etl"
	"orderexport/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for orderexport.
// It exposes the catalogue, templates and exports so AI agents can build
// column sets and produce CSV files.
type Server struct {
	mcp *server.MCPServer
	log *slog.Logger

	templates *service.TemplateService
	exports   *service.ExportService

	// Per-source defaults from the config file, merged under tool arguments.
	sourceDefaults map[string]etl.SourceConfig
	previewLimit   int
}

// Deps holds everything the MCP server needs from the CLI layer.
type Deps struct {
	Templates      *service.TemplateService
	Exports        *service.ExportService
	SourceDefaults map[string]etl.SourceConfig
	PreviewLimit   int
	Logger         *slog.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:            logger,
		templates:      deps.Templates,
		exports:        deps.Exports,
		sourceDefaults: deps.SourceDefaults,
		previewLimit:   deps.PreviewLimit,
	}

	s.mcp = server.NewMCPServer(
		"orderexport-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerFieldTools()
	s.registerTemplateTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("mcp: starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

// sourceConfig parses the sourceConfigJSON argument and lays it over the
// configured defaults for sourceType.
func (s *Server) sourceConfig(sourceType, raw string) (etl.SourceConfig, error) {
	var over etl.SourceConfig
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &over); err != nil {
			return nil, fmt.Errorf("parse sourceConfigJSON: %w", err)
		}
	}
	return s.sourceDefaults[sourceType].Merge(over), nil
}

// stringList reads an argument that is either a JSON array of strings or a
// comma-separated string.
func stringList(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return v
	case string:
		var list []string
		if err := json.Unmarshal([]byte(v), &list); err == nil {
			return list
		}
		return splitComma(v)
	}
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package mcpserver

import (
	"context"
	"fmt"

	"orderexport/internal/columns"
	"orderexport/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTemplateTools() {
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List export templates with their columns"),
	), s.handleListTemplates)

	s.mcp.AddTool(mcp.NewTool("create_template",
		mcp.WithDescription("Create an export template holding the default columns (Order Name, Order Created Date, Financial Status, Subtotal Price Set)"),
		mcp.WithString("name", mcp.Description("Template name (defaults to order-export-template)")),
	), s.handleCreateTemplate)

	s.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Get a template's columns in export order"),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
	), s.handleGetTemplate)

	s.mcp.AddTool(mcp.NewTool("select_fields",
		mcp.WithDescription("Replace a template's columns with the given catalogue paths, in order. Existing columns keep their id and label; paths not in the catalogue are ignored."),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithArray("paths", mcp.Description("Field paths, e.g. [\"raw.name\", \"raw.email\"]"), mcp.Required(), mcp.WithStringItems()),
	), s.handleSelectFields)

	s.mcp.AddTool(mcp.NewTool("add_field",
		mcp.WithDescription("Append a column for a field path. Paths outside the catalogue are allowed and labelled with the path itself."),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("path", mcp.Description("Field path, e.g. raw.customer.email or raw.line_items[0].sku"), mcp.Required()),
	), s.handleAddField)

	s.mcp.AddTool(mcp.NewTool("remove_field",
		mcp.WithDescription("Remove the column bound to a field path"),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("path", mcp.Description("Field path"), mcp.Required()),
	), s.handleRemoveField)

	s.mcp.AddTool(mcp.NewTool("reorder_fields",
		mcp.WithDescription("Move column fromId to the position currently held by column toId"),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("fromId", mcp.Description("Column id to move"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Column id whose position it takes"), mcp.Required()),
	), s.handleReorderFields)

	s.mcp.AddTool(mcp.NewTool("delete_template",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a template. Templates used by export jobs cannot be deleted."),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteTemplate)
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := s.templates.List()
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	return jsonResult(templates)
}

func (s *Server) handleCreateTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := s.templates.Create(ctx, req.GetString("name", ""))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return jsonResult(t)
}

func (s *Server) handleGetTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleSelectFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	if _, ok := args["paths"]; !ok {
		return nil, fmt.Errorf("paths is required")
	}
	// An empty list clears the template.
	t, err := s.templates.ReplaceSelection(ctx, ref, stringList(args, "paths"))
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleAddField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	path := req.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	t, err := s.templates.AddField(ctx, ref, path)
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleRemoveField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.RemoveField(ctx, ref, req.GetString("path", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleReorderFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.Reorder(ctx, ref, req.GetString("fromId", ""), req.GetString("toId", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleDeleteTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	if err := s.templates.Delete(ctx, ref); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Template %s deleted", ref)), nil
}

func requireTemplate(req mcp.CallToolRequest) (string, error) {
	ref := req.GetString("template", "")
	if ref == "" {
		return "", fmt.Errorf("template is required")
	}
	return ref, nil
}

// liveSet loads a template into a column set for read-only queries.
func (s *Server) liveSet(ref string) (*columns.Set, error) {
	if ref == "" {
		return nil, fmt.Errorf("template is required")
	}
	t, err := s.templates.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return columns.FromColumns(s.templates.Catalogue(), t.Columns), nil
}

package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("build_export_template",
		mcp.WithPromptDescription("Guide through building an export template for a reporting need"),
		mcp.WithArgument("purpose",
			mcp.ArgumentDescription("What the export is for, e.g. 'monthly shipping report'"),
			mcp.RequiredArgument(),
		),
	), s.handleBuildTemplatePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("schedule_export",
		mcp.WithPromptDescription("Set up a recurring CSV export from an order source"),
		mcp.WithArgument("template",
			mcp.ArgumentDescription("Template name"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("schedule",
			mcp.ArgumentDescription("When it should run, in words or as a cron expression"),
			mcp.RequiredArgument(),
		),
	), s.handleScheduleExportPrompt)
}

func (s *Server) handleBuildTemplatePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	purpose := req.Params.Arguments["purpose"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build an export template for: %s", purpose),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build an export template for "%s". Follow these steps:

1. Use search_fields with a few keywords to find relevant catalogue fields
2. Create a template (create_template) with a short descriptive name
3. Call select_fields with the chosen paths in the order the columns should appear
4. If a needed value is not in the catalogue, use discover_fields on a source and add_field with the discovered path
5. Check the result with preview_export before running run_export

Keep the column count small and put identifying columns (order name, dates) first.`, purpose),
				},
			},
		},
	}, nil
}

func (s *Server) handleScheduleExportPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	template := req.Params.Arguments["template"]
	schedule := req.Params.Arguments["schedule"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Schedule the %s export", template),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Schedule the "%s" export to run %s. Follow these steps:

1. Use list_sources to pick the source type and its configuration
2. Run preview_export once to confirm the source and template produce the expected rows
3. Convert the schedule to a five-field cron expression
4. Create the job with create_export_job (triggerType "schedule")
5. Run it once with run_export_job and report the written path`, template, schedule),
				},
			},
		},
	}, nil
}

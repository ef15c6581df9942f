package mcpserver

import (
	"context"
	"fmt"

	"orderexport/internal/domain"
	"orderexport/internal/etl"
	"orderexport/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerExportTools() {
	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List available record source types with their configuration schemas"),
	), s.handleListSources)

	s.mcp.AddTool(mcp.NewTool("discover_fields",
		mcp.WithDescription("Sample a source and list the leaf field paths its records carry, ready to pass to add_field"),
		mcp.WithString("sourceType", mcp.Description("Source type (use list_sources to see available types)"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Source configuration as JSON; merged over configured defaults")),
		mcp.WithNumber("sample", mcp.Description("Number of records to sample (default 20)")),
	), s.handleDiscoverFields)

	s.mcp.AddTool(mcp.NewTool("preview_export",
		mcp.WithDescription("Render a template over records from a source as a table of display cells, without writing anything"),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("sourceType", mcp.Description("Source type"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Source configuration as JSON; merged over configured defaults")),
		mcp.WithNumber("limit", mcp.Description("Maximum records to render")),
	), s.handlePreviewExport)

	s.mcp.AddTool(mcp.NewTool("run_export",
		mcp.WithDescription("Write a CSV export (UTF-8 with BOM, CRLF rows) of a template over a source's records"),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("sourceType", mcp.Description("Source type"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Source configuration as JSON; merged over configured defaults")),
		mcp.WithString("outputDir", mcp.Description("Directory to write into (defaults to the configured output directory)")),
		mcp.WithNumber("limit", mcp.Description("Maximum records to export (0 = all)")),
	), s.handleRunExport)

	s.mcp.AddTool(mcp.NewTool("create_export_job",
		mcp.WithDescription("Save an export as a job that runs manually, on a cron schedule or when a file changes"),
		mcp.WithString("name", mcp.Description("Job name"), mcp.Required()),
		mcp.WithString("template", mcp.Description("Template ID or name"), mcp.Required()),
		mcp.WithString("sourceType", mcp.Description("Source type"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Source configuration as JSON; merged over configured defaults")),
		mcp.WithString("outputDir", mcp.Description("Directory to write into")),
		mcp.WithNumber("limit", mcp.Description("Maximum records to export (0 = all)")),
		mcp.WithString("triggerType", mcp.Description("manual, schedule or file_watch"), mcp.Enum("manual", "schedule", "file_watch")),
		mcp.WithString("triggerConfig", mcp.Description("Cron expression for schedule, file path for file_watch")),
	), s.handleCreateExportJob)

	s.mcp.AddTool(mcp.NewTool("list_export_jobs",
		mcp.WithDescription("List export jobs with their last run status"),
	), s.handleListExportJobs)

	s.mcp.AddTool(mcp.NewTool("run_export_job",
		mcp.WithDescription("Run an export job now and record a run log. Overwrites the day's export file."),
		mcp.WithString("jobId", mcp.Description("Export job ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunExportJob)
}

func (s *Server) handleListSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.exports.ListSources())
}

func (s *Server) handleDiscoverFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceType := req.GetString("sourceType", "")
	if sourceType == "" {
		return nil, fmt.Errorf("sourceType is required")
	}
	cfg, err := s.sourceConfig(sourceType, req.GetString("sourceConfigJSON", ""))
	if err != nil {
		return nil, err
	}
	schema, err := etl.Discover(ctx, sourceType, cfg, req.GetInt("sample", 20))
	if err != nil {
		return nil, fmt.Errorf("discover fields: %w", err)
	}
	return jsonResult(schema)
}

func (s *Server) handlePreviewExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	sourceType := req.GetString("sourceType", "")
	cfg, err := s.sourceConfig(sourceType, req.GetString("sourceConfigJSON", ""))
	if err != nil {
		return nil, err
	}
	preview, err := s.exports.Preview(ctx, ref, sourceType, cfg, req.GetInt("limit", s.previewLimit))
	if err != nil {
		return nil, fmt.Errorf("preview export: %w", err)
	}
	return jsonResult(preview)
}

func (s *Server) handleRunExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	sourceType := req.GetString("sourceType", "")
	cfg, err := s.sourceConfig(sourceType, req.GetString("sourceConfigJSON", ""))
	if err != nil {
		return nil, err
	}
	result, err := s.exports.Export(ctx, service.ExportRequest{
		TemplateRef:  ref,
		SourceType:   sourceType,
		SourceConfig: cfg,
		OutputDir:    req.GetString("outputDir", ""),
		Limit:        req.GetInt("limit", 0),
	})
	if err != nil {
		return nil, fmt.Errorf("run export: %w", err)
	}
	return jsonResult(result)
}

func (s *Server) handleCreateExportJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := requireTemplate(req)
	if err != nil {
		return nil, err
	}
	sourceType := req.GetString("sourceType", "")
	cfg, err := s.sourceConfig(sourceType, req.GetString("sourceConfigJSON", ""))
	if err != nil {
		return nil, err
	}
	job, err := s.exports.CreateJob(ctx, service.CreateExportJobInput{
		Name:          req.GetString("name", ""),
		TemplateRef:   ref,
		SourceType:    sourceType,
		SourceConfig:  cfg,
		OutputDir:     req.GetString("outputDir", ""),
		Limit:         req.GetInt("limit", 0),
		TriggerType:   domain.TriggerType(req.GetString("triggerType", string(domain.TriggerManual))),
		TriggerConfig: req.GetString("triggerConfig", ""),
		Enabled:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}
	return jsonResult(job)
}

func (s *Server) handleListExportJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.exports.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("list export jobs: %w", err)
	}
	if jobs == nil {
		jobs = []domain.ExportJob{}
	}
	return jsonResult(jobs)
}

func (s *Server) handleRunExportJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("jobId", "")
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required")
	}
	result, err := s.exports.RunJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("run export job: %w", err)
	}
	return jsonResult(result)
}

package app

import (
	"context"

	mcpserver "orderexport/internal/mcp"
)

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
// Scheduled and file-watch jobs keep running alongside it.
func (a *App) ServeMCP(ctx context.Context) error {
	a.Exports.RestartWatchers(ctx)

	srv := mcpserver.New(mcpserver.Deps{
		Templates:      a.Templates,
		Exports:        a.Exports,
		SourceDefaults: a.Config.Sources,
		PreviewLimit:   a.Config.Export.PreviewLimit,
		Logger:         a.Log,
	})
	return srv.ServeStdio()
}

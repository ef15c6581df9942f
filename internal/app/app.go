// Package app wires storage, sources and services into one runtime that the
// CLI commands, the scheduler daemon and the MCP server share.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderexport/internal/catalogue"
	"orderexport/internal/config"
	"orderexport/internal/etl/sources"
	"orderexport/internal/grid"
	"orderexport/internal/secret"
	"orderexport/internal/service"
	"orderexport/internal/storage"
)

const shutdownGrace = 30 * time.Second

// App owns the database and the services built on it.
type App struct {
	Config    *config.Config
	Log       *slog.Logger
	Catalogue *catalogue.Catalogue
	Templates *service.TemplateService
	Exports   *service.ExportService

	db *storage.DB
}

// Options tweak Open. Zero values are fine.
type Options struct {
	Logger  *slog.Logger
	Emitter service.EventEmitter
	Secrets secret.SecretStore
	Now     func() time.Time
}

// Open opens the database under cfg.DataDir and builds the services.
func Open(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := cfg.LoadCatalogue()
	if err != nil {
		return nil, err
	}

	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.Secrets != nil {
		sources.SetSecretStore(opts.Secrets)
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = service.LogEmitter{Logger: logger}
	}

	templates := service.NewTemplateService(storage.NewTemplateStore(db), cat, emitter)
	exports := service.NewExportService(templates, storage.NewExportJobStore(db), emitter, service.ExportOptions{
		OutputDir: cfg.Export.OutputDir,
		Now:       opts.Now,
		Projector: grid.NewProjector(),
		Logger:    logger,
	})

	logger.Debug("app: opened", "db", db.Path(), "fields", cat.Len())
	return &App{
		Config:    cfg,
		Log:       logger,
		Catalogue: cat,
		Templates: templates,
		Exports:   exports,
		db:        db,
	}, nil
}

// Shutdown stops triggers, waits for running jobs and closes the database.
func (a *App) Shutdown(ctx context.Context) {
	a.Exports.Stop()

	waitCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	a.Exports.WaitRunning(waitCtx)

	if err := a.db.Close(); err != nil {
		a.Log.Warn("app: close database", "err", err)
	}
}

// TemplateRef returns ref, or the configured default template name.
func (a *App) TemplateRef(ref string) string {
	if ref != "" {
		return ref
	}
	return a.Config.Export.TemplateName
}

// EnsureTemplate resolves ref, creating it when it names the configured
// default template and does not exist yet.
func (a *App) EnsureTemplate(ctx context.Context, ref string) (string, error) {
	ref = a.TemplateRef(ref)
	if _, err := a.Templates.Resolve(ref); err == nil {
		return ref, nil
	} else if ref != a.Config.Export.TemplateName {
		return "", err
	}
	if _, err := a.Templates.Create(ctx, ref); err != nil {
		return "", err
	}
	return ref, nil
}

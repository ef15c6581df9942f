package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"orderexport/internal/domain"
	"orderexport/internal/etl"
	"orderexport/internal/export"
	"orderexport/internal/grid"
)

// ─────────────────────────────────────────────────────────────
// Export Service — CSV exports and their triggers
// ─────────────────────────────────────────────────────────────

const (
	previewTimeout   = 30 * time.Second
	exportTimeout    = 5 * time.Minute
	watchDebounce    = 500 * time.Millisecond
	defaultRowLimit  = 50
	runLogPageLength = 50
)

// ExportOptions tune an ExportService. Zero values pick defaults.
type ExportOptions struct {
	OutputDir string
	Now       func() time.Time
	Projector *grid.Projector
	Logger    *slog.Logger
}

// ExportService renders templates over source records and manages export
// jobs with their cron and file-watch triggers.
type ExportService struct {
	templates   *TemplateService
	jobs        domain.ExportJobStore
	emitter     EventEmitter
	opts        ExportOptions
	log         *slog.Logger
	runningJobs runningJobsGuard

	// watcher / cron lifecycle
	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewExportService creates an ExportService ready for use.
func NewExportService(templates *TemplateService, jobs domain.ExportJobStore, emitter EventEmitter, opts ExportOptions) *ExportService {
	if emitter == nil {
		emitter = LogEmitter{Logger: opts.Logger}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Projector == nil {
		opts.Projector = &grid.Projector{}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		templates: templates,
		jobs:      jobs,
		emitter:   emitter,
		opts:      opts,
		log:       logger,
	}
}

// ── Preview / Export ───────────────────────────────────────

// PreviewResult is the display grid of a template over sampled records.
type PreviewResult struct {
	Template *domain.Template `json:"template"`
	Headers  []string         `json:"headers"`
	Rows     grid.Grid        `json:"rows"`
}

// Preview loads up to limit records and projects them through the template.
func (s *ExportService) Preview(ctx context.Context, templateRef, sourceType string, cfg etl.SourceConfig, limit int) (*PreviewResult, error) {
	t, err := s.templates.Resolve(templateRef)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRowLimit
	}

	previewCtx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	records, err := etl.Load(previewCtx, sourceType, cfg, limit)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		Template: t,
		Headers:  grid.Headers(t.Columns),
		Rows:     s.opts.Projector.Project(t.Columns, records),
	}, nil
}

// ExportRequest names a template, a source and where to write.
type ExportRequest struct {
	TemplateRef  string           `json:"template"`
	SourceType   string           `json:"sourceType"`
	SourceConfig etl.SourceConfig `json:"sourceConfig"`
	OutputDir    string           `json:"outputDir,omitempty"`
	Limit        int              `json:"limit,omitempty"` // 0 reads everything the source yields
}

// ExportResult describes a written document.
type ExportResult struct {
	Path     string        `json:"path"`
	Filename string        `json:"filename"`
	MIMEType string        `json:"mimeType"`
	Rows     int           `json:"rows"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// Export writes <dir>/<template>-<date>.csv and emits export:completed.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	start := time.Now()

	t, err := s.templates.Resolve(req.TemplateRef)
	if err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	records, err := etl.Load(readCtx, req.SourceType, req.SourceConfig, req.Limit)
	if err != nil {
		return nil, err
	}

	doc, err := export.Build(s.opts.Projector, t.Name, t.Columns, records, s.opts.Now())
	if err != nil {
		return nil, err
	}

	dir := req.OutputDir
	if dir == "" {
		dir = s.opts.OutputDir
	}
	path, err := writeFileAtomic(dir, doc.Filename, doc.Body)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Path:     path,
		Filename: doc.Filename,
		MIMEType: doc.MIMEType,
		Rows:     doc.Rows,
		Bytes:    int64(len(doc.Body)),
		Duration: time.Since(start),
	}
	s.log.Info("export: written", "template", t.Name, "path", path, "rows", result.Rows, "bytes", result.Bytes)
	s.emitter.Emit(ctx, EventExportCompleted, result)
	return result, nil
}

// writeFileAtomic writes data to a temp file in dir and renames it over
// dir/name.
func writeFileAtomic(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	final := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename export: %w", err)
	}
	return final, nil
}

// ── Job CRUD ───────────────────────────────────────────────

type CreateExportJobInput struct {
	Name          string             `json:"name"`
	TemplateRef   string             `json:"template"`
	SourceType    string             `json:"sourceType"`
	SourceConfig  map[string]any     `json:"sourceConfig"`
	OutputDir     string             `json:"outputDir"`
	Limit         int                `json:"limit"`
	TriggerType   domain.TriggerType `json:"triggerType"`
	TriggerConfig string             `json:"triggerConfig"`
	Enabled       bool               `json:"enabled"`
}

func (s *ExportService) validateJob(input *CreateExportJobInput) (*domain.Template, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("job name is required")
	}
	if _, err := etl.GetSource(input.SourceType); err != nil {
		return nil, err
	}
	t, err := s.templates.Resolve(input.TemplateRef)
	if err != nil {
		return nil, err
	}
	if input.TriggerType == "" {
		input.TriggerType = domain.TriggerManual
	}
	if !input.TriggerType.Valid() {
		return nil, fmt.Errorf("unknown trigger type: %q", input.TriggerType)
	}
	switch input.TriggerType {
	case domain.TriggerSchedule:
		if _, err := cron.ParseStandard(input.TriggerConfig); err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", input.TriggerConfig, err)
		}
	case domain.TriggerFileWatch:
		if strings.TrimSpace(input.TriggerConfig) == "" {
			return nil, fmt.Errorf("file_watch trigger needs a path")
		}
	}
	return t, nil
}

func (s *ExportService) CreateJob(ctx context.Context, input CreateExportJobInput) (*domain.ExportJob, error) {
	t, err := s.validateJob(&input)
	if err != nil {
		return nil, err
	}
	job := &domain.ExportJob{
		Name:          strings.TrimSpace(input.Name),
		TemplateID:    t.ID,
		SourceType:    input.SourceType,
		SourceConfig:  input.SourceConfig,
		OutputDir:     input.OutputDir,
		Limit:         input.Limit,
		TriggerType:   input.TriggerType,
		TriggerConfig: input.TriggerConfig,
		Enabled:       input.Enabled,
	}
	if err := s.jobs.CreateJob(job); err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}
	s.RestartWatchers(ctx)
	return job, nil
}

func (s *ExportService) GetJob(id string) (*domain.ExportJob, error) {
	return s.jobs.GetJob(id)
}

func (s *ExportService) ListJobs() ([]domain.ExportJob, error) {
	return s.jobs.ListJobs()
}

func (s *ExportService) UpdateJob(ctx context.Context, id string, input CreateExportJobInput) (*domain.ExportJob, error) {
	job, err := s.jobs.GetJob(id)
	if err != nil {
		return nil, err
	}
	t, err := s.validateJob(&input)
	if err != nil {
		return nil, err
	}
	job.Name = strings.TrimSpace(input.Name)
	job.TemplateID = t.ID
	job.SourceType = input.SourceType
	job.SourceConfig = input.SourceConfig
	job.OutputDir = input.OutputDir
	job.Limit = input.Limit
	job.TriggerType = input.TriggerType
	job.TriggerConfig = input.TriggerConfig
	job.Enabled = input.Enabled

	if err := s.jobs.UpdateJob(job); err != nil {
		return nil, err
	}
	s.RestartWatchers(ctx)
	return job, nil
}

func (s *ExportService) DeleteJob(ctx context.Context, id string) error {
	err := s.jobs.DeleteJob(id)
	if err == nil {
		s.RestartWatchers(ctx)
	}
	return err
}

// ListRunLogs returns the most recent run logs for a job.
func (s *ExportService) ListRunLogs(jobID string) ([]domain.ExportRunLog, error) {
	return s.jobs.ListRunLogs(jobID, runLogPageLength)
}

// ListSources returns the available source descriptors.
func (s *ExportService) ListSources() []etl.SourceSpec {
	return etl.ListSources()
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes an export job synchronously and records a run log.
func (s *ExportService) RunJob(ctx context.Context, id string) (*ExportResult, error) {
	if !s.runningJobs.TryLock(id) {
		return nil, fmt.Errorf("job %s is already running", id)
	}
	defer s.runningJobs.Unlock(id)

	job, err := s.jobs.GetJob(id)
	if err != nil {
		return nil, err
	}

	if err := s.jobs.UpdateJobStatus(id, domain.StatusRunning, ""); err != nil {
		s.log.Warn("export job: status update failed", "job", id, "err", err)
	}

	start := time.Now()
	result, runErr := s.Export(ctx, ExportRequest{
		TemplateRef:  job.TemplateID,
		SourceType:   job.SourceType,
		SourceConfig: job.SourceConfig,
		OutputDir:    job.OutputDir,
		Limit:        job.Limit,
	})

	runLog := &domain.ExportRunLog{
		JobID:      id,
		StartedAt:  start,
		FinishedAt: time.Now(),
		Status:     domain.StatusSuccess,
	}
	if result != nil {
		runLog.Rows = result.Rows
		runLog.Bytes = result.Bytes
		runLog.Path = result.Path
	}
	errMsg := ""
	if runErr != nil {
		runLog.Status = domain.StatusError
		errMsg = runErr.Error()
		runLog.Error = errMsg
	}
	if err := s.jobs.CreateRunLog(runLog); err != nil {
		s.log.Warn("export job: run log not saved", "job", id, "err", err)
	}
	if err := s.jobs.UpdateJobStatus(id, runLog.Status, errMsg); err != nil {
		s.log.Warn("export job: status update failed", "job", id, "err", err)
	}

	return result, runErr
}

// ── Watchers (cron + file_watch) ──────────────────────────

// RestartWatchers tears down the current watcher/cron and rebuilds them
// from the enabled triggered jobs. Triggered runs keep ctx's values but not
// its cancellation. Stop only halts new triggers; WaitRunning waits for runs
// already in flight.
func (s *ExportService) RestartWatchers(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchersLocked()

	jobs, err := s.jobs.ListTriggeredJobs()
	if err != nil {
		s.log.Error("export watcher: failed to list jobs", "err", err)
		return
	}

	// ── Cron jobs ──
	var c *cron.Cron
	scheduled := 0
	for _, j := range jobs {
		if j.TriggerType != domain.TriggerSchedule || j.TriggerConfig == "" {
			continue
		}
		if c == nil {
			c = cron.New()
		}
		jid, expr := j.ID, j.TriggerConfig
		if _, err := c.AddFunc(expr, func() {
			s.log.Info("export cron: running job", "job", jid)
			if _, err := s.RunJob(ctx, jid); err != nil {
				s.log.Error("export cron: job failed", "job", jid, "err", err)
			}
		}); err != nil {
			s.log.Error("export cron: invalid expression", "expr", expr, "job", jid, "err", err)
			continue
		}
		scheduled++
	}
	if c != nil {
		c.Start()
		s.cronSched = c
		s.log.Info("export cron: scheduled jobs", "count", scheduled)
	}

	// ── File watchers ──
	pathToJobs := make(map[string][]string)
	for _, j := range jobs {
		if j.TriggerType != domain.TriggerFileWatch || j.TriggerConfig == "" {
			continue
		}
		absPath, err := filepath.Abs(j.TriggerConfig)
		if err != nil {
			s.log.Warn("export watcher: bad path", "path", j.TriggerConfig, "err", err)
			continue
		}
		pathToJobs[absPath] = append(pathToJobs[absPath], j.ID)
	}
	if len(pathToJobs) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Error("export watcher: failed to create watcher", "err", err)
		return
	}
	s.watcher = watcher

	// Watch parent directories; editors often replace files by rename.
	watchedDirs := make(map[string]bool)
	for absPath := range pathToJobs {
		dir := filepath.Dir(absPath)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			s.log.Warn("export watcher: failed to watch dir", "dir", dir, "err", err)
			continue
		}
		watchedDirs[dir] = true
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel

	go s.watchLoop(ctx, watchCtx, watcher, pathToJobs)

	s.log.Info("export watcher: watching files", "count", len(pathToJobs))
}

func (s *ExportService) watchLoop(runCtx, watchCtx context.Context, watcher *fsnotify.Watcher, pathToJobs map[string][]string) {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	for {
		select {
		case <-watchCtx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			for _, jobID := range pathToJobs[absPath] {
				if t, exists := timers[jobID]; exists {
					t.Stop()
				}
				jid := jobID
				timers[jobID] = time.AfterFunc(watchDebounce, func() {
					if watchCtx.Err() != nil {
						return
					}
					s.log.Info("export watcher: file changed, running job", "path", absPath, "job", jid)
					if _, err := s.RunJob(runCtx, jid); err != nil {
						s.log.Error("export watcher: run failed", "job", jid, "err", err)
					}
				})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("export watcher: error", "err", err)
		}
	}
}

// WaitRunning blocks until all running jobs finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *ExportService) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down all watchers and schedulers.
func (s *ExportService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchersLocked()
}

func (s *ExportService) stopWatchersLocked() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}

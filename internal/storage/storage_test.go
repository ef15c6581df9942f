package storage_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"orderexport/internal/columns"
	"orderexport/internal/domain"
	"orderexport/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "data", "orderexport.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─────────────────────────────────────────────────────────────
// TemplateStore
// ─────────────────────────────────────────────────────────────

func TestTemplateStore_CRUD(t *testing.T) {
	s := storage.NewTemplateStore(openDB(t))

	tpl := &domain.Template{Name: "daily", Columns: columns.DefaultColumns()}
	if err := s.CreateTemplate(tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.ID == "" || tpl.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", tpl)
	}

	got, err := s.GetTemplate(tpl.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "daily" || len(got.Columns) != 4 || got.Columns[3].Path != "raw.subtotal_price_set.shop_money.amount" {
		t.Errorf("unexpected template %+v", got)
	}

	got.Name = "weekly"
	got.Columns = got.Columns[:1]
	if err := s.UpdateTemplate(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	byName, err := s.FindTemplateByName("weekly")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if byName.ID != tpl.ID || len(byName.Columns) != 1 {
		t.Errorf("unexpected template after update %+v", byName)
	}

	if err := s.DeleteTemplate(tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTemplate(tpl.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplateStore_NotFoundMessage(t *testing.T) {
	s := storage.NewTemplateStore(openDB(t))
	_, err := s.GetTemplate("nope")
	if err == nil || err.Error() != "template not found: nope" {
		t.Errorf("expected 'template not found: nope', got %v", err)
	}
	if err := s.DeleteTemplate("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
	if err := s.UpdateTemplate(&domain.Template{ID: "nope", Name: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}
}

func TestTemplateStore_UniqueName(t *testing.T) {
	s := storage.NewTemplateStore(openDB(t))
	if err := s.CreateTemplate(&domain.Template{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	err := s.CreateTemplate(&domain.Template{Name: "a"})
	if err == nil || !strings.Contains(err.Error(), "already in use") {
		t.Errorf("expected duplicate name error, got %v", err)
	}
}

func TestTemplateStore_List(t *testing.T) {
	s := storage.NewTemplateStore(openDB(t))
	for _, n := range []string{"first", "second"} {
		if err := s.CreateTemplate(&domain.Template{Name: n}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListTemplates()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "first" {
		t.Errorf("unexpected list %+v", list)
	}
}

// ─────────────────────────────────────────────────────────────
// ExportJobStore
// ─────────────────────────────────────────────────────────────

func TestExportJobStore(t *testing.T) {
	db := openDB(t)
	templates := storage.NewTemplateStore(db)
	jobs := storage.NewExportJobStore(db)

	tpl := &domain.Template{Name: "t"}
	if err := templates.CreateTemplate(tpl); err != nil {
		t.Fatal(err)
	}

	job := &domain.ExportJob{
		Name:          "nightly",
		TemplateID:    tpl.ID,
		SourceType:    "json_file",
		SourceConfig:  map[string]any{"filePath": "/tmp/orders.json"},
		OutputDir:     "/tmp/out",
		Limit:         50,
		TriggerType:   domain.TriggerSchedule,
		TriggerConfig: "0 2 * * *",
		Enabled:       true,
	}
	if err := jobs.CreateJob(job); err != nil {
		t.Fatalf("create: %v", err)
	}
	manual := &domain.ExportJob{Name: "adhoc", TemplateID: tpl.ID, SourceType: "json_file", TriggerType: domain.TriggerManual, Enabled: true}
	if err := jobs.CreateJob(manual); err != nil {
		t.Fatal(err)
	}

	got, err := jobs.GetJob(job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SourceConfig["filePath"] != "/tmp/orders.json" || got.TriggerType != domain.TriggerSchedule || !got.LastRunAt.IsZero() {
		t.Errorf("unexpected job %+v", got)
	}

	triggered, err := jobs.ListTriggeredJobs()
	if err != nil {
		t.Fatal(err)
	}
	if len(triggered) != 1 || triggered[0].ID != job.ID {
		t.Errorf("expected only the scheduled job, got %+v", triggered)
	}

	if err := jobs.UpdateJobStatus(job.ID, domain.StatusError, "boom"); err != nil {
		t.Fatal(err)
	}
	got, _ = jobs.GetJob(job.ID)
	if got.LastStatus != domain.StatusError || got.LastError != "boom" || got.LastRunAt.IsZero() {
		t.Errorf("status not recorded: %+v", got)
	}

	if err := templates.DeleteTemplate(tpl.ID); err == nil {
		t.Error("expected template in use to be protected")
	}

	start := time.Now().Add(-time.Second)
	for i, status := range []string{domain.StatusSuccess, domain.StatusError} {
		l := &domain.ExportRunLog{
			JobID:      job.ID,
			StartedAt:  start.Add(time.Duration(i) * time.Millisecond),
			FinishedAt: start.Add(time.Duration(i+1) * time.Millisecond),
			Status:     status,
			Rows:       3,
			Bytes:      120,
		}
		if err := jobs.CreateRunLog(l); err != nil {
			t.Fatal(err)
		}
	}
	logs, err := jobs.ListRunLogs(job.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].Status != domain.StatusError || logs[1].Bytes != 120 {
		t.Errorf("unexpected logs %+v", logs)
	}

	if err := jobs.DeleteJob(job.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := jobs.GetJob(job.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if logs, _ := jobs.ListRunLogs(job.ID, 10); len(logs) != 0 {
		t.Errorf("expected run logs removed, got %d", len(logs))
	}
}

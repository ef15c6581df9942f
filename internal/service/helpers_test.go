package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"orderexport/internal/catalogue"
	_ "orderexport/internal/etl/sources"
	"orderexport/internal/fieldpath"
	"orderexport/internal/grid"
	"orderexport/internal/logging"
	"orderexport/internal/service"
	"orderexport/internal/storage"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

type fixture struct {
	db        *storage.DB
	emitter   *service.MockEmitter
	templates *service.TemplateService
	exports   *service.ExportService
	outDir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "orderexport.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	templates := service.NewTemplateService(storage.NewTemplateStore(db), catalogue.Default(), emitter)
	outDir := filepath.Join(dir, "out")
	exports := service.NewExportService(templates, storage.NewExportJobStore(db), emitter, service.ExportOptions{
		OutputDir: outDir,
		Now:       func() time.Time { return fixedNow },
		Projector: &grid.Projector{Synthetic: &fieldpath.StaticProvider{Now: func() time.Time { return fixedNow }}},
		Logger:    logging.Discard(),
	})
	t.Cleanup(exports.Stop)

	return &fixture{db: db, emitter: emitter, templates: templates, exports: exports, outDir: outDir}
}

func writeOrders(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "orders.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write orders: %v", err)
	}
	return path
}

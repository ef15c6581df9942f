package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"orderexport/internal/catalogue"
	"orderexport/internal/columns"
	"orderexport/internal/domain"
	"orderexport/internal/export"
	"orderexport/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Template Service — named column sets
// ─────────────────────────────────────────────────────────────

// TemplateService loads a template into a columns.Set, applies one
// operation and saves it back. The load-mutate-save cycle is serialized.
type TemplateService struct {
	store   domain.TemplateStore
	cat     *catalogue.Catalogue
	emitter EventEmitter

	mu sync.Mutex
}

// NewTemplateService creates a TemplateService over store, labelling new
// columns from cat.
func NewTemplateService(store domain.TemplateStore, cat *catalogue.Catalogue, emitter EventEmitter) *TemplateService {
	if emitter == nil {
		emitter = LogEmitter{}
	}
	return &TemplateService{store: store, cat: cat, emitter: emitter}
}

// Catalogue returns the catalogue new columns are labelled from.
func (s *TemplateService) Catalogue() *catalogue.Catalogue {
	return s.cat
}

// ── CRUD ───────────────────────────────────────────────────

// Create stores a template holding the default columns. A blank name
// becomes the default template name.
func (s *TemplateService) Create(ctx context.Context, name string) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = export.DefaultTemplateName
	}
	t := &domain.Template{Name: name, Columns: columns.NewSet(s.cat).Columns()}
	if err := s.store.CreateTemplate(t); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventTemplateUpdated, t.ID)
	return t, nil
}

// Get returns a template by id.
func (s *TemplateService) Get(id string) (*domain.Template, error) {
	return s.store.GetTemplate(id)
}

// Resolve finds a template by id, falling back to its name.
func (s *TemplateService) Resolve(ref string) (*domain.Template, error) {
	t, err := s.store.GetTemplate(ref)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return t, err
	}
	return s.store.FindTemplateByName(ref)
}

// List returns all templates, oldest first.
func (s *TemplateService) List() ([]domain.Template, error) {
	return s.store.ListTemplates()
}

// Rename changes the template name.
func (s *TemplateService) Rename(ctx context.Context, ref, name string) (*domain.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	t.Name = name
	if err := s.store.UpdateTemplate(t); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventTemplateUpdated, t.ID)
	return t, nil
}

// Delete removes a template that no export job uses.
func (s *TemplateService) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Resolve(ref)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTemplate(t.ID); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventTemplateUpdated, t.ID)
	return nil
}

// ── Column operations ──────────────────────────────────────

// Reorder moves column fromID to the position held by toID.
func (s *TemplateService) Reorder(ctx context.Context, ref, fromID, toID string) (*domain.Template, error) {
	return s.mutate(ctx, ref, func(set *columns.Set) { set.Reorder(fromID, toID) })
}

// ReplaceSelection rebuilds the columns from paths.
func (s *TemplateService) ReplaceSelection(ctx context.Context, ref string, paths []string) (*domain.Template, error) {
	return s.mutate(ctx, ref, func(set *columns.Set) { set.ReplaceSelection(paths) })
}

// AddField appends a column for path.
func (s *TemplateService) AddField(ctx context.Context, ref, path string) (*domain.Template, error) {
	return s.mutate(ctx, ref, func(set *columns.Set) { set.Add(path) })
}

// RemoveField drops the column bound to path.
func (s *TemplateService) RemoveField(ctx context.Context, ref, path string) (*domain.Template, error) {
	return s.mutate(ctx, ref, func(set *columns.Set) { set.Remove(path) })
}

// Edit hands the template's live column set to fn, then saves the result.
// Interactive editors use it to apply a whole session at once.
func (s *TemplateService) Edit(ctx context.Context, ref string, fn func(*columns.Set)) (*domain.Template, error) {
	return s.mutate(ctx, ref, fn)
}

func (s *TemplateService) mutate(ctx context.Context, ref string, fn func(*columns.Set)) (*domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	set := columns.FromColumns(s.cat, t.Columns)
	fn(set)
	t.Columns = set.Columns()
	if err := s.store.UpdateTemplate(t); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	s.emitter.Emit(ctx, EventTemplateUpdated, t.ID)
	return t, nil
}

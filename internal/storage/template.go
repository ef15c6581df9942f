package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderexport/internal/domain"
)

// TemplateStore implements domain.TemplateStore using SQLite.
type TemplateStore struct {
	db *DB
}

func NewTemplateStore(db *DB) *TemplateStore {
	return &TemplateStore{db: db}
}

var _ domain.TemplateStore = (*TemplateStore)(nil)

const templateColumns = `id, name, columns_json, created_at, updated_at`

func (s *TemplateStore) CreateTemplate(t *domain.Template) error {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(cols), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("template name already in use: %s", t.Name)
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *TemplateStore) GetTemplate(id string) (*domain.Template, error) {
	row := s.db.conn.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("template", id)
	}
	return t, err
}

func (s *TemplateStore) FindTemplateByName(name string) (*domain.Template, error) {
	row := s.db.conn.QueryRow(`SELECT `+templateColumns+` FROM templates WHERE name = ?`, name)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("template", name)
	}
	return t, err
}

func (s *TemplateStore) ListTemplates() ([]domain.Template, error) {
	rows, err := s.db.conn.Query(`SELECT ` + templateColumns + ` FROM templates ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *TemplateStore) UpdateTemplate(t *domain.Template) error {
	t.UpdatedAt = time.Now().UTC()
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	res, err := s.db.conn.Exec(
		`UPDATE templates SET name=?, columns_json=?, updated_at=? WHERE id=?`,
		t.Name, string(cols), t.UpdatedAt, t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("template name already in use: %s", t.Name)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("template", t.ID)
	}
	return nil
}

func (s *TemplateStore) DeleteTemplate(id string) error {
	var jobs int
	if err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM export_jobs WHERE template_id = ?`, id).Scan(&jobs); err != nil {
		return err
	}
	if jobs > 0 {
		return fmt.Errorf("template %s is used by %d export job(s)", id, jobs)
	}
	res, err := s.db.conn.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("template", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(r rowScanner) (*domain.Template, error) {
	t := &domain.Template{}
	var cols string
	if err := r.Scan(&t.ID, &t.Name, &cols, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cols), &t.Columns); err != nil {
		return nil, fmt.Errorf("decode columns of template %s: %w", t.ID, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package domain

import (
	"time"

	"orderexport/internal/columns"
)

// Template is a named, persisted column set.
type Template struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Columns   []columns.Column `json:"columns"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type TemplateStore interface {
	CreateTemplate(t *Template) error
	GetTemplate(id string) (*Template, error)
	FindTemplateByName(name string) (*Template, error)
	ListTemplates() ([]Template, error)
	UpdateTemplate(t *Template) error
	DeleteTemplate(id string) error
}

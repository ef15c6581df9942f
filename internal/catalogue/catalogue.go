// Package catalogue is the static registry of fields the exporter knows how
// to label and offer for selection.
package catalogue

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var defaultSeed []byte

// Field is one selectable (label, path) pair.
type Field struct {
	Label string `json:"label" yaml:"label"`
	Path  string `json:"path" yaml:"path"`
	Group string `json:"group,omitempty" yaml:"-"`
}

// Catalogue is immutable once built. All accessors return copies.
type Catalogue struct {
	fields []Field
	byPath map[string]int
	groups []string
}

// New builds a catalogue. Blank paths are skipped and only the first entry
// for a given path is kept.
func New(fields ...Field) *Catalogue {
	c := &Catalogue{byPath: make(map[string]int, len(fields))}
	for _, f := range fields {
		f.Path = strings.TrimSpace(f.Path)
		if f.Path == "" {
			continue
		}
		if _, dup := c.byPath[f.Path]; dup {
			continue
		}
		if strings.TrimSpace(f.Label) == "" {
			f.Label = f.Path
		}
		c.byPath[f.Path] = len(c.fields)
		c.fields = append(c.fields, f)
	}
	c.groups = lo.Uniq(lo.FilterMap(c.fields, func(f Field, _ int) (string, bool) {
		return f.Group, f.Group != ""
	}))
	return c
}

type seedFile struct {
	Groups []struct {
		Name   string  `yaml:"name"`
		Fields []Field `yaml:"fields"`
	} `yaml:"groups"`
}

// Load reads a YAML seed in the same shape as the embedded default.
func Load(r io.Reader) (*Catalogue, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	var fields []Field
	for _, g := range seed.Groups {
		for _, f := range g.Fields {
			f.Group = g.Name
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("parse catalogue: no fields defined")
	}
	return New(fields...), nil
}

// Default returns the built-in order field catalogue.
func Default() *Catalogue {
	c, err := Load(strings.NewReader(string(defaultSeed)))
	if err != nil {
		panic(fmt.Sprintf("catalogue: embedded seed: %v", err))
	}
	return c
}

// All returns every field in catalogue order.
func (c *Catalogue) All() []Field {
	return append([]Field(nil), c.fields...)
}

// Len returns the number of fields.
func (c *Catalogue) Len() int { return len(c.fields) }

// Groups returns group names in first-seen order.
func (c *Catalogue) Groups() []string {
	return append([]string(nil), c.groups...)
}

// FindByPath looks up the field registered for path.
func (c *Catalogue) FindByPath(path string) (Field, bool) {
	i, ok := c.byPath[path]
	if !ok {
		return Field{}, false
	}
	return c.fields[i], true
}

// Has reports whether path is registered.
func (c *Catalogue) Has(path string) bool {
	_, ok := c.byPath[path]
	return ok
}

// LabelFor returns the catalogue label for path, or path itself.
func (c *Catalogue) LabelFor(path string) string {
	if f, ok := c.FindByPath(path); ok {
		return f.Label
	}
	return path
}

// Search returns fields whose label contains query, ignoring case.
// An empty query matches everything.
func (c *Catalogue) Search(query string) []Field {
	if query == "" {
		return c.All()
	}
	fold := cases.Fold()
	needle := fold.String(query)
	return lo.Filter(c.fields, func(f Field, _ int) bool {
		return strings.Contains(fold.String(f.Label), needle)
	})
}

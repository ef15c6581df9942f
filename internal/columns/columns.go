// Package columns manages the ordered set of active export columns.
package columns

import (
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"orderexport/internal/catalogue"
)

// Column is one active projection of a path with its display label.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// DefaultColumns is the column set a new template starts with.
func DefaultColumns() []Column {
	return []Column{
		{ID: "name", Label: "Order Name", Path: "raw.name"},
		{ID: "createdAt", Label: "Order Created Date", Path: "raw.created_at"},
		{ID: "financialStatus", Label: "Financial Status", Path: "raw.financial_status"},
		{ID: "totalPrice", Label: "Subtotal Price Set", Path: "raw.subtotal_price_set.shop_money.amount"},
	}
}

// Set is an ordered column list with unique ids. None of its operations
// fail; bad input leaves the set unchanged. Mutations are serialized.
type Set struct {
	mu   sync.RWMutex
	cat  *catalogue.Catalogue
	cols []Column
}

// NewSet returns a set holding DefaultColumns.
func NewSet(cat *catalogue.Catalogue) *Set {
	return &Set{cat: cat, cols: DefaultColumns()}
}

// FromColumns rebuilds a set from previously saved columns. Entries with a
// blank path, a repeated path or a repeated id are dropped.
func FromColumns(cat *catalogue.Catalogue, cols []Column) *Set {
	s := &Set{cat: cat}
	ids := map[string]bool{}
	paths := map[string]bool{}
	for _, c := range cols {
		if c.Path == "" || paths[c.Path] {
			continue
		}
		if c.ID == "" || ids[c.ID] {
			c.ID = uniqueID(c.Path, ids)
		}
		if c.Label == "" {
			c.Label = s.labelFor(c.Path)
		}
		ids[c.ID] = true
		paths[c.Path] = true
		s.cols = append(s.cols, c)
	}
	return s
}

// Columns returns a snapshot of the current order.
func (s *Set) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Column(nil), s.cols...)
}

// Paths returns the column paths in order.
func (s *Set) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.cols, func(c Column, _ int) string { return c.Path })
}

// Labels returns the column labels in order.
func (s *Set) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.cols, func(c Column, _ int) string { return c.Label })
}

// Len returns the number of columns.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cols)
}

// Contains reports whether a column with path exists.
func (s *Set) Contains(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfPath(path) >= 0
}

// Reorder moves the column fromID to the index currently held by toID.
func (s *Set) Reorder(fromID, toID string) {
	if fromID == toID {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOfID(fromID)
	to := s.indexOfID(toID)
	if from < 0 || to < 0 {
		return
	}
	moved := s.cols[from]
	rest := append(append([]Column(nil), s.cols[:from]...), s.cols[from+1:]...)
	out := make([]Column, 0, len(s.cols))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	s.cols = out
}

// ReplaceSelection rebuilds the set from paths. Columns already present
// keep their id and label; new paths get a catalogue label and an id derived
// from the path. Paths unknown to both the set and the catalogue are dropped.
func (s *Set) ReplaceSelection(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := lo.KeyBy(s.cols, func(c Column) string { return c.Path })

	next := make([]Column, 0, len(paths))
	taken := map[string]bool{}
	for _, p := range lo.Uniq(paths) {
		if existing, ok := prev[p]; ok {
			next = append(next, existing)
			taken[existing.ID] = true
			continue
		}
		if s.cat == nil || !s.cat.Has(p) {
			continue
		}
		next = append(next, Column{Path: p, Label: s.labelFor(p)})
	}

	// Kept ids are reserved before any new id is synthesized.
	for i := range next {
		if next[i].ID != "" {
			continue
		}
		next[i].ID = uniqueID(next[i].Path, taken)
		taken[next[i].ID] = true
	}
	s.cols = next
}

// Add appends a column for path if it is not already present.
func (s *Set) Add(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfPath(path) >= 0 {
		return
	}
	ids := map[string]bool{}
	for _, c := range s.cols {
		ids[c.ID] = true
	}
	s.cols = append(s.cols, Column{
		ID:    uniqueID(path, ids),
		Label: s.labelFor(path),
		Path:  path,
	})
}

// Remove drops any column bound to path.
func (s *Set) Remove(path string) {
	path = strings.TrimSpace(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = lo.Reject(s.cols, func(c Column, _ int) bool { return c.Path == path })
}

func (s *Set) labelFor(path string) string {
	if s.cat == nil {
		return path
	}
	return s.cat.LabelFor(path)
}

func (s *Set) indexOfID(id string) int {
	_, i, _ := lo.FindIndexOf(s.cols, func(c Column) bool { return c.ID == id })
	return i
}

func (s *Set) indexOfPath(path string) int {
	_, i, _ := lo.FindIndexOf(s.cols, func(c Column) bool { return c.Path == path })
	return i
}

// uniqueID derives an id from path, suffixing "-2", "-3", ... on collision.
func uniqueID(path string, taken map[string]bool) string {
	if !taken[path] {
		return path
	}
	for n := 2; ; n++ {
		id := path + "-" + strconv.Itoa(n)
		if !taken[id] {
			return id
		}
	}
}

// Package picker holds the field picker's selection state. Every event is a
// function from one State to the next; rendering lives elsewhere.
package picker

import (
	"strings"

	"github.com/samber/lo"

	"orderexport/internal/catalogue"
	"orderexport/internal/columns"
)

// State is a modal multi-select over the catalogue. Draft is an ordered set
// of paths kept apart from the live column set until Confirm.
type State struct {
	Open  bool
	Query string
	Draft []string
}

// Open shows the picker with the draft seeded from the live columns.
func Open(live *columns.Set) State {
	return State{Open: true, Draft: live.Paths()}
}

// WithQuery sets the filter text.
func (s State) WithQuery(q string) State {
	s.Query = q
	return s
}

// Selected reports whether path is in the draft.
func (s State) Selected(path string) bool {
	return lo.Contains(s.Draft, path)
}

// Toggle adds path to the draft, or drops it if it is already there.
func (s State) Toggle(path string) State {
	path = strings.TrimSpace(path)
	if path == "" {
		return s
	}
	if s.Selected(path) {
		s.Draft = lo.Without(s.Draft, path)
		return s
	}
	s.Draft = append(append([]string(nil), s.Draft...), path)
	return s
}

// Select adds every path not already drafted, keeping draft order.
func (s State) Select(paths ...string) State {
	draft := append([]string(nil), s.Draft...)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || lo.Contains(draft, p) {
			continue
		}
		draft = append(draft, p)
	}
	s.Draft = draft
	return s
}

// Visible lists catalogue fields matching the query.
func (s State) Visible(cat *catalogue.Catalogue) []catalogue.Field {
	return cat.Search(s.Query)
}

// Suggestions lists matching fields for inline add, skipping paths already
// drafted or already bound to a column.
func (s State) Suggestions(cat *catalogue.Catalogue, live *columns.Set) []catalogue.Field {
	return lo.Reject(cat.Search(s.Query), func(f catalogue.Field, _ int) bool {
		return s.Selected(f.Path) || live.Contains(f.Path)
	})
}

// Confirm commits the draft into live, then closes with a fresh draft.
func (s State) Confirm(live *columns.Set) State {
	live.ReplaceSelection(s.Draft)
	return State{Draft: live.Paths()}
}

// Cancel discards the draft and closes.
func (s State) Cancel(live *columns.Set) State {
	return State{Draft: live.Paths()}
}

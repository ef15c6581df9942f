package columns_test

import (
	"reflect"
	"sort"
	"sync"
	"testing"

	"orderexport/internal/catalogue"
	"orderexport/internal/columns"
)

func ids(cols []columns.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.ID
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// Defaults
// ─────────────────────────────────────────────────────────────

func TestNewSet_Defaults(t *testing.T) {
	s := columns.NewSet(catalogue.Default())
	want := []string{"name", "createdAt", "financialStatus", "totalPrice"}
	if got := ids(s.Columns()); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	cat := catalogue.Default()
	for _, c := range s.Columns() {
		if !cat.Has(c.Path) {
			t.Errorf("default column %q not in catalogue", c.Path)
		}
	}
}

// ─────────────────────────────────────────────────────────────
// Reorder
// ─────────────────────────────────────────────────────────────

func TestReorder(t *testing.T) {
	cases := []struct {
		from, to string
		want     []string
	}{
		{"name", "financialStatus", []string{"createdAt", "financialStatus", "name", "totalPrice"}},
		{"totalPrice", "name", []string{"totalPrice", "name", "createdAt", "financialStatus"}},
		{"createdAt", "totalPrice", []string{"name", "financialStatus", "totalPrice", "createdAt"}},
		{"name", "name", []string{"name", "createdAt", "financialStatus", "totalPrice"}},
		{"missing", "name", []string{"name", "createdAt", "financialStatus", "totalPrice"}},
		{"name", "missing", []string{"name", "createdAt", "financialStatus", "totalPrice"}},
	}
	for _, c := range cases {
		s := columns.NewSet(catalogue.Default())
		s.Reorder(c.from, c.to)
		if got := ids(s.Columns()); !reflect.DeepEqual(got, c.want) {
			t.Errorf("Reorder(%s,%s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestReorder_PreservesMembership(t *testing.T) {
	s := columns.NewSet(catalogue.Default())
	s.Add("raw.email")
	s.Add("raw.note")
	before := s.Columns()

	s.Reorder("raw.note", "name")
	s.Reorder("createdAt", "raw.email")
	after := s.Columns()

	if len(before) != len(after) {
		t.Fatalf("size changed: %d -> %d", len(before), len(after))
	}
	key := func(cols []columns.Column) []string {
		out := make([]string, len(cols))
		for i, c := range cols {
			out[i] = c.ID + "|" + c.Label + "|" + c.Path
		}
		sort.Strings(out)
		return out
	}
	if !reflect.DeepEqual(key(before), key(after)) {
		t.Errorf("membership changed:\n%v\n%v", key(before), key(after))
	}
}

// ─────────────────────────────────────────────────────────────
// ReplaceSelection
// ─────────────────────────────────────────────────────────────

func TestReplaceSelection(t *testing.T) {
	s := columns.NewSet(catalogue.Default())
	s.ReplaceSelection([]string{
		"raw.customer.email",
		"raw.name",
		"raw.not_in_catalogue",
		"__static.exportedTimestamp",
		"raw.customer.email",
	})

	got := s.Columns()
	want := []columns.Column{
		{ID: "raw.customer.email", Label: "Customer Email", Path: "raw.customer.email"},
		{ID: "name", Label: "Order Name", Path: "raw.name"},
		{ID: "__static.exportedTimestamp", Label: "Exported Timestamp", Path: "__static.exportedTimestamp"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected columns:\n got %+v\nwant %+v", got, want)
	}
}

func TestReplaceSelection_Idempotent(t *testing.T) {
	paths := []string{"raw.email", "raw.created_at", "raw.note_attributes[0].value"}

	s := columns.NewSet(catalogue.Default())
	s.ReplaceSelection(paths)
	first := ids(s.Columns())
	s.ReplaceSelection(paths)
	second := ids(s.Columns())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ids changed between calls: %v vs %v", first, second)
	}

	other := columns.NewSet(catalogue.Default())
	other.ReplaceSelection(paths)
	if !reflect.DeepEqual(first, ids(other.Columns())) {
		t.Error("ids must be reproducible across sets")
	}
}

func TestReplaceSelection_KeepsUnknownExisting(t *testing.T) {
	s := columns.FromColumns(catalogue.Default(), []columns.Column{
		{ID: "legacy", Label: "Legacy", Path: "raw.legacy_field"},
	})
	s.ReplaceSelection([]string{"raw.legacy_field", "raw.gone"})
	got := s.Columns()
	if len(got) != 1 || got[0].ID != "legacy" || got[0].Label != "Legacy" {
		t.Errorf("existing column should survive untouched, got %+v", got)
	}
}

func TestReplaceSelection_IDCollision(t *testing.T) {
	s := columns.FromColumns(catalogue.Default(), []columns.Column{
		{ID: "raw.email", Label: "Custom", Path: "raw.custom"},
	})
	s.ReplaceSelection([]string{"raw.email", "raw.custom"})
	got := ids(s.Columns())
	want := []string{"raw.email-2", "raw.email"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// ─────────────────────────────────────────────────────────────
// Add / Remove
// ─────────────────────────────────────────────────────────────

func TestAddRemove(t *testing.T) {
	s := columns.NewSet(catalogue.Default())
	s.Add("raw.email")
	s.Add("raw.email")
	s.Add("")
	s.Add("   ")
	s.Add("raw.free_form")

	if s.Len() != 6 {
		t.Fatalf("expected 6 columns, got %d", s.Len())
	}
	cols := s.Columns()
	if cols[4].Label != "Email (Order)" || cols[4].ID != "raw.email" {
		t.Errorf("unexpected added column %+v", cols[4])
	}
	if cols[5].Label != "raw.free_form" {
		t.Errorf("label should fall back to path, got %+v", cols[5])
	}

	s.Remove(" raw.email ")
	s.Remove("raw.unknown")
	if s.Contains("raw.email") || s.Len() != 5 {
		t.Errorf("remove failed: %v", s.Paths())
	}
}

func TestFromColumns_Sanitizes(t *testing.T) {
	s := columns.FromColumns(nil, []columns.Column{
		{ID: "a", Path: "raw.a"},
		{ID: "a", Label: "B", Path: "raw.b"},
		{ID: "c", Label: "dup", Path: "raw.a"},
		{ID: "d", Label: "blank"},
	})
	got := s.Columns()
	want := []columns.Column{
		{ID: "a", Label: "raw.a", Path: "raw.a"},
		{ID: "raw.b", Label: "B", Path: "raw.b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected columns %+v", got)
	}
}

func TestSet_ConcurrentMutations(t *testing.T) {
	s := columns.NewSet(catalogue.Default())
	cat := catalogue.Default().All()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for _, f := range cat {
				s.Add(f.Path)
				s.Reorder(f.Path, "name")
				if i%2 == 0 {
					s.Remove(f.Path)
				}
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, c := range s.Columns() {
		if seen[c.ID] {
			t.Fatalf("duplicate id %q after concurrent mutation", c.ID)
		}
		seen[c.ID] = true
	}
}

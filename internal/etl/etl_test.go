package etl_test

import (
	"context"
	"errors"
	"testing"

	"orderexport/internal/etl"
	"orderexport/internal/value"
)

// ─────────────────────────────────────────────────────────────
// fakeSource emits n numbered orders, then err.
// ─────────────────────────────────────────────────────────────

type fakeSource struct {
	n   int
	err error
}

func (f *fakeSource) Spec() etl.SourceSpec { return etl.SourceSpec{Type: "fake", Label: "Fake"} }

func (f *fakeSource) Read(ctx context.Context, _ etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	out := make(chan etl.Record)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for i := 0; i < f.n; i++ {
			rec := value.NewMapping().Set("name", value.String("#"+string(rune('A'+i))))
			select {
			case out <- rec:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if f.err != nil {
			errCh <- f.err
		}
	}()
	return out, errCh
}

func TestCollect_All(t *testing.T) {
	recs, err := etl.Collect(context.Background(), &fakeSource{n: 3}, nil, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
}

func TestCollect_Limit(t *testing.T) {
	recs, err := etl.Collect(context.Background(), &fakeSource{n: 10}, nil, 2)
	if err != nil {
		t.Fatalf("expected cancellation after limit to be swallowed, got %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestCollect_SourceError(t *testing.T) {
	boom := errors.New("boom")
	recs, err := etl.Collect(context.Background(), &fakeSource{n: 1, err: boom}, nil, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("expected partial records, got %d", len(recs))
	}
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := etl.Collect(ctx, &fakeSource{n: 1}, nil, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	etl.RegisterSource(&fakeSource{})
	if _, err := etl.GetSource("fake"); err != nil {
		t.Fatalf("expected fake source, got %v", err)
	}
	if _, err := etl.GetSource("nope"); err == nil {
		t.Fatal("expected error for unknown source")
	}
	found := false
	for _, s := range etl.ListSources() {
		if s.Type == "fake" {
			found = true
		}
	}
	if !found {
		t.Error("fake source not listed")
	}
}

// ─────────────────────────────────────────────────────────────
// SourceConfig helpers
// ─────────────────────────────────────────────────────────────

func TestSourceConfig(t *testing.T) {
	cfg := etl.SourceConfig{
		"name":    "  orders ",
		"limit":   "25",
		"bad":     "x",
		"nested":  "false",
		"headers": `{"X-Shop":"acme"}`,
	}
	if got := cfg.String("name"); got != "orders" {
		t.Errorf("expected trimmed string, got %q", got)
	}
	if got := cfg.StringOr("missing", "dflt"); got != "dflt" {
		t.Errorf("expected default, got %q", got)
	}
	if got := cfg.Int("limit", 50); got != 25 {
		t.Errorf("expected 25, got %d", got)
	}
	if got := cfg.Int("bad", 50); got != 50 {
		t.Errorf("expected default for bad int, got %d", got)
	}
	if got := cfg.Bool("nested", true); got {
		t.Error("expected false")
	}
	if got := cfg.StringMap("headers"); got["X-Shop"] != "acme" {
		t.Errorf("expected header map, got %v", got)
	}

	merged := cfg.Merge(etl.SourceConfig{"limit": 5})
	if merged.Int("limit", 0) != 5 || cfg.Int("limit", 0) != 25 {
		t.Error("merge should override without mutating the receiver")
	}
}

// ─────────────────────────────────────────────────────────────
// InferSchema
// ─────────────────────────────────────────────────────────────

func TestInferSchema(t *testing.T) {
	a, _ := value.ParseJSON([]byte(`{"name":"#1","customer":{"email":"a@b.c"},"line_items":[{"sku":"A"},{"sku":"B","qty":2}],"tags":[]}`))
	b, _ := value.ParseJSON([]byte(`{"name":"#2","note":null}`))

	got := etl.InferSchema([]etl.Record{a, b}).Paths()
	want := []string{"raw.name", "raw.customer.email", "raw.line_items[0].sku", "raw.note"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

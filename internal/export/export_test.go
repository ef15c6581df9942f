package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"orderexport/internal/columns"
	"orderexport/internal/export"
	"orderexport/internal/fieldpath"
	"orderexport/internal/grid"
	"orderexport/internal/value"
)

func parse(t *testing.T, docs ...string) []value.Value {
	t.Helper()
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		v, err := value.ParseJSON([]byte(d))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		out[i] = v
	}
	return out
}

func TestSerialize_EndToEnd(t *testing.T) {
	recs := parse(t, `{"name":"A"}`, `{"name":"B"}`)
	cols := []columns.Column{{ID: "name", Label: "Order Name", Path: "raw.name"}}

	got := export.Serialize(grid.NewProjector(), cols, recs)
	want := "Order Name\r\nA\r\nB"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSerialize_Escaping(t *testing.T) {
	recs := parse(t,
		`{"name":"Smith, John","note":"Say \"hi\"","multi":"a\nb","n":42,"b":true,"obj":{"k":"v"}}`,
	)
	cols := []columns.Column{
		{ID: "name", Label: "Name", Path: "raw.name"},
		{ID: "note", Label: "Note, quoted", Path: "raw.note"},
		{ID: "multi", Label: "Multi", Path: "raw.multi"},
		{ID: "n", Label: "N", Path: "raw.n"},
		{ID: "b", Label: "B", Path: "raw.b"},
		{ID: "obj", Label: "Obj", Path: "raw.obj"},
		{ID: "none", Label: "None", Path: "raw.none"},
	}
	got := export.Serialize(grid.NewProjector(), cols, recs)
	lines := strings.Split(got, "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 CRLF rows, got %d: %q", len(lines), got)
	}
	if lines[0] != `Name,"Note, quoted",Multi,N,B,Obj,None` {
		t.Errorf("unexpected header %q", lines[0])
	}
	wantRow := `"Smith, John","Say ""hi""","a` + "\n" + `b",42,true,"{""k"":""v""}",`
	if lines[1] != wantRow {
		t.Errorf("unexpected row\n got %q\nwant %q", lines[1], wantRow)
	}
}

func TestSerialize_Snapshot(t *testing.T) {
	cols := []columns.Column{{ID: "a", Label: "A", Path: "raw.a"}}
	recs := parse(t, `{"a":1}`)
	out := export.Serialize(grid.NewProjector(), cols, recs)
	cols[0].Label = "changed"
	if !strings.HasPrefix(out, "A\r\n") {
		t.Errorf("serializer output changed after mutation: %q", out)
	}
}

func TestSerialize_NoRecords(t *testing.T) {
	got := export.Serialize(grid.NewProjector(), columns.DefaultColumns(), nil)
	if got != "Order Name,Order Created Date,Financial Status,Subtotal Price Set" {
		t.Errorf("unexpected header-only document %q", got)
	}
}

func TestSerialize_Timestamp(t *testing.T) {
	at := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	p := &grid.Projector{Synthetic: &fieldpath.StaticProvider{Now: func() time.Time { return at }}}
	cols := []columns.Column{{ID: "ts", Label: "Exported Timestamp", Path: fieldpath.ExportedTimestamp}}

	got := export.Serialize(p, cols, parse(t, `{}`, `{}`))
	want := "Exported Timestamp\r\n2026-10-15T08:00:00.000Z\r\n2026-10-15T08:00:00.000Z"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEscapeField(t *testing.T) {
	cases := map[string]string{
		"plain":       "plain",
		"":            "",
		" lead":       " lead",
		"a,b":         `"a,b"`,
		`q"q`:         `"q""q"`,
		"cr\rlf":      "\"cr\rlf\"",
		"Smith, John": `"Smith, John"`,
		`Say "hi"`:    `"Say ""hi"""`,
	}
	for in, want := range cases {
		if got := export.EscapeField(in); got != want {
			t.Errorf("EscapeField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteDocument_BOM(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteDocument(&buf, "Tên,Giá\r\nÁo,10"); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := buf.Bytes()
	if !bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("missing BOM: % x", b[:3])
	}
	if string(b[3:]) != "Tên,Giá\r\nÁo,10" {
		t.Errorf("body altered: %q", b[3:])
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC)
	if got := export.Filename("  spring sale ", at); got != "spring sale-2026-10-15.csv" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := export.Filename("", at); got != "order-export-template-2026-10-15.csv" {
		t.Errorf("unexpected default filename %q", got)
	}
	for name, want := range map[string]string{
		"EU/Spring sale": "EU-Spring sale-2026-10-15.csv",
		`EU\Spring`:      "EU-Spring-2026-10-15.csv",
		"../escape":      "..-escape-2026-10-15.csv",
		"..":             "order-export-template-2026-10-15.csv",
		" . ":            "order-export-template-2026-10-15.csv",
	} {
		if got := export.Filename(name, at); got != want {
			t.Errorf("Filename(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestBuild(t *testing.T) {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	doc, err := export.Build(grid.NewProjector(), "t", columns.DefaultColumns(), parse(t, `{"name":"#1"}`), at)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.Filename != "t-2026-01-02.csv" || doc.MIMEType != export.MIMEType || doc.Rows != 1 {
		t.Errorf("unexpected document %+v", doc)
	}
	if !bytes.Contains(doc.Body, []byte("\r\n#1,,,")) {
		t.Errorf("unexpected body %q", doc.Body)
	}
}

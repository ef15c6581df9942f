// Package export serializes a column set over records as a delimited-text
// (CSV) document.
package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"orderexport/internal/columns"
	"orderexport/internal/format"
	"orderexport/internal/grid"
	"orderexport/internal/value"
)

const (
	// MIMEType is served with downloaded documents.
	MIMEType = "text/csv;charset=utf-8"

	// DefaultTemplateName is used when the template name is blank.
	DefaultTemplateName = "order-export-template"

	rowSeparator = "\r\n"
)

// Serialize renders the header row and one row per record, CRLF-joined.
// cols is read once; later changes to the caller's column set are not seen.
func Serialize(p *grid.Projector, cols []columns.Column, recs []value.Value) string {
	snapshot := append([]columns.Column(nil), cols...)

	lines := make([]string, 0, len(recs)+1)
	lines = append(lines, joinRow(grid.Headers(snapshot)))
	for _, row := range p.ProjectExport(snapshot, recs) {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = format.Text(cell)
		}
		lines = append(lines, joinRow(cells))
	}
	return strings.Join(lines, rowSeparator)
}

func joinRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeField(f)
	}
	return strings.Join(escaped, ",")
}

// EscapeField quotes s when it contains a comma, a double quote or a line
// break, doubling any embedded quotes.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteDocument writes doc as UTF-8 prefixed with a byte-order mark.
func WriteDocument(w io.Writer, doc string) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	if _, err := io.WriteString(tw, doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("flush document: %w", err)
	}
	return nil
}

// Filename returns "<template-name>-<YYYY-MM-DD>.csv" for the date of at.
// Path separators in the name become "-" so the file always lands in the
// output directory.
func Filename(templateName string, at time.Time) string {
	name := strings.TrimSpace(templateName)
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = DefaultTemplateName
	}
	return fmt.Sprintf("%s-%s.csv", name, at.UTC().Format("2006-01-02"))
}

// Document is a ready-to-download export.
type Document struct {
	Filename string
	MIMEType string
	Body     []byte
	Rows     int
}

// Build serializes and encodes a complete document.
func Build(p *grid.Projector, templateName string, cols []columns.Column, recs []value.Value, at time.Time) (*Document, error) {
	var buf bytes.Buffer
	if err := WriteDocument(&buf, Serialize(p, cols, recs)); err != nil {
		return nil, err
	}
	return &Document{
		Filename: Filename(templateName, at),
		MIMEType: MIMEType,
		Body:     buf.Bytes(),
		Rows:     len(recs),
	}, nil
}

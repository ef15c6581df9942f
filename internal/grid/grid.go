// Package grid projects records through a column set into display cells.
package grid

import (
	"orderexport/internal/columns"
	"orderexport/internal/fieldpath"
	"orderexport/internal/format"
	"orderexport/internal/value"
)

// Grid is rows (one per record) of display cells (one per column).
type Grid [][]string

// Projector resolves cells. The zero value uses the wall-clock static provider.
type Projector struct {
	Synthetic fieldpath.Provider
}

// NewProjector returns a Projector with the default synthetic provider.
func NewProjector() *Projector {
	return &Projector{Synthetic: fieldpath.NewStaticProvider()}
}

// ResolveCell probes the synthetic provider first and only then walks the record.
func (p *Projector) ResolveCell(col columns.Column, rec value.Value) value.Value {
	if v, ok := p.synthetic().Provide(col.Path); ok {
		return v
	}
	return fieldpath.Resolve(rec, col.Path)
}

var defaultSynthetic fieldpath.Provider = fieldpath.NewStaticProvider()

func (p *Projector) synthetic() fieldpath.Provider {
	if p == nil || p.Synthetic == nil {
		return defaultSynthetic
	}
	return p.Synthetic
}

// Project renders every record × column through format.Display.
func (p *Projector) Project(cols []columns.Column, recs []value.Value) Grid {
	out := make(Grid, len(recs))
	for i, rec := range recs {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = format.Display(p.ResolveCell(col, rec))
		}
		out[i] = row
	}
	return out
}

// ProjectExport renders every record × column through format.Export.
func (p *Projector) ProjectExport(cols []columns.Column, recs []value.Value) [][]value.Value {
	out := make([][]value.Value, len(recs))
	for i, rec := range recs {
		row := make([]value.Value, len(cols))
		for j, col := range cols {
			row[j] = format.Export(p.ResolveCell(col, rec))
		}
		out[i] = row
	}
	return out
}

// Headers returns the column labels in order.
func Headers(cols []columns.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

// Transpose flips the grid so that each row holds one column's values, the
// field-per-row layout of the template editor.
func (g Grid) Transpose(width int) [][]string {
	out := make([][]string, width)
	for j := range out {
		out[j] = make([]string, len(g))
		for i, row := range g {
			if j < len(row) {
				out[j][i] = row[j]
			}
		}
	}
	return out
}

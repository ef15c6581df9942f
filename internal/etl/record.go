package etl

import (
	"orderexport/internal/fieldpath"
	"orderexport/internal/value"
)

// ── Record ─────────────────────────────────────────────────
// Every source emits the same record shape: the order payload as a
// value.Value tree, addressed by catalogue paths without the "raw." prefix.

// Record is one order.
type Record = value.Value

// Field is a leaf path observed in sampled records.
type Field struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Schema lists the leaf paths of sampled records in first-seen order.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Paths returns the field paths in order.
func (s *Schema) Paths() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Path
	}
	return out
}

// maxSchemaDepth stops InferSchema from walking pathological documents.
const maxSchemaDepth = 8

// InferSchema walks records and collects every leaf as a catalogue-style
// path ("raw.a.b", "raw.items[0].sku"). Sequences contribute their first
// element only.
func InferSchema(records []Record) *Schema {
	s := &Schema{}
	seen := map[string]bool{}
	for _, rec := range records {
		walkLeaves(rec, "", 0, func(path string, v value.Value) {
			if seen[path] {
				return
			}
			seen[path] = true
			s.Fields = append(s.Fields, Field{Path: fieldpath.RawPrefix + path, Kind: v.Kind().String()})
		})
	}
	return s
}

func walkLeaves(v value.Value, prefix string, depth int, fn func(string, value.Value)) {
	if v == nil {
		return
	}
	if depth >= maxSchemaDepth {
		if prefix != "" {
			fn(prefix, v)
		}
		return
	}
	switch t := v.(type) {
	case *value.Mapping:
		t.Each(func(k string, item value.Value) bool {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			walkLeaves(item, p, depth+1, fn)
			return true
		})
	case value.Sequence:
		if len(t) > 0 && prefix != "" {
			walkLeaves(t[0], prefix+"[0]", depth+1, fn)
		}
	default:
		if prefix != "" {
			fn(prefix, v)
		}
	}
}

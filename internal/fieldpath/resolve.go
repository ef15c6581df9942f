// Package fieldpath evaluates dotted/indexed path expressions such as
// "raw.line_items[0].properties[1].value" against record values.
package fieldpath

import (
	"regexp"
	"strconv"
	"strings"

	"orderexport/internal/value"
)

// RawPrefix is the namespace catalogue paths are written under. Records
// handed to the resolver carry no such wrapper key.
const RawPrefix = "raw."

var indexedSegment = regexp.MustCompile(`^(.+?)\[(\d+)\]$`)

// NormalizeForRead rewrites every "[]" to "[0]" and strips a leading "raw.".
func NormalizeForRead(path string) string {
	p := strings.ReplaceAll(path, "[]", "[0]")
	return strings.TrimPrefix(p, RawPrefix)
}

// Segments splits a normalized path into trimmed, non-empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Resolve walks path through record. It returns nil when the path does not
// lead to a value; it never panics.
func Resolve(record value.Value, path string) value.Value {
	segs := Segments(NormalizeForRead(path))
	if len(segs) == 0 {
		return nil
	}

	cur := record
	for _, seg := range segs {
		if value.IsNullish(cur) {
			return nil
		}
		if m := indexedSegment.FindStringSubmatch(seg); m != nil {
			seq, ok := lookup(cur, m[1]).(value.Sequence)
			if !ok {
				return nil
			}
			idx, err := strconv.Atoi(m[2])
			if err != nil || idx >= len(seq) {
				return nil
			}
			cur = seq[idx]
			continue
		}
		cur = lookup(cur, seg)
	}
	return cur
}

func lookup(v value.Value, key string) value.Value {
	m, ok := v.(*value.Mapping)
	if !ok {
		return nil
	}
	item, _ := m.Get(key)
	return item
}

// Package format turns resolved values into display strings and typed
// export cells. Neither mode can fail.
package format

import (
	"math"

	"orderexport/internal/value"
)

// Placeholder is shown for anything that has no meaningful display text.
const Placeholder = "-"

// Display renders v for a table cell.
func Display(v value.Value) string {
	if value.IsNullish(v) {
		return Placeholder
	}
	switch t := v.(type) {
	case value.String:
		if t == "" {
			return Placeholder
		}
		return string(t)
	case value.Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Placeholder
		}
		return value.FormatNumber(f)
	case value.Bool:
		if t {
			return "true"
		}
		return "false"
	}
	return structured(v)
}

// Export renders v for a delimited-text cell. The result is always a
// value.String, value.Number or value.Bool so that an empty cell stays
// distinguishable from zero or false.
func Export(v value.Value) value.Value {
	if value.IsNullish(v) {
		return value.String("")
	}
	switch v.(type) {
	case value.String, value.Number, value.Bool:
		return v
	}
	return value.String(structured(v))
}

// Text stringifies an export cell.
func Text(cell value.Value) string {
	switch t := cell.(type) {
	case value.String:
		return string(t)
	case value.Number:
		return value.FormatNumber(float64(t))
	case value.Bool:
		if t {
			return "true"
		}
		return "false"
	}
	if value.IsNullish(cell) {
		return ""
	}
	return structured(cell)
}

func structured(v value.Value) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = value.GenericString(v)
		}
	}()
	b, err := value.MarshalJSON(v)
	if err != nil {
		return value.GenericString(v)
	}
	return string(b)
}

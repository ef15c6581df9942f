package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"
)

// FromAny converts plain Go data (as produced by encoding/json, database
// drivers or hand-built maps) into a Value. Go maps carry no order, so their
// keys are sorted. Unknown types fall back to their fmt representation.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case time.Time:
		return String(t.UTC().Format(time.RFC3339Nano))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(t)
		if err != nil {
			return String(fmt.Sprint(t))
		}
		return Number(f)
	case []any:
		seq := make(Sequence, len(t))
		for i, item := range t {
			seq[i] = FromAny(item)
		}
		return seq
	case []string:
		seq := make(Sequence, len(t))
		for i, item := range t {
			seq[i] = String(item)
		}
		return seq
	case []map[string]any:
		seq := make(Sequence, len(t))
		for i, item := range t {
			seq[i] = FromAny(item)
		}
		return seq
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return m
	case fmt.Stringer:
		return String(t.String())
	default:
		return String(fmt.Sprint(t))
	}
}

// GenericString is the last-resort text form of a value, used when the
// JSON rendering of a structured value is not available.
func GenericString(v Value) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		if t {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(float64(t))
	case String:
		return string(t)
	case Sequence:
		return fmt.Sprintf("[sequence of %d]", len(t))
	case *Mapping:
		return fmt.Sprintf("{mapping of %d}", t.Len())
	default:
		return fmt.Sprint(v)
	}
}

package value

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Value ──────────────────────────────────────────────────
// Closed set of shapes a record can take. A nil Value means
// "undefined": the path did not lead anywhere.

// Kind identifies the concrete shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is implemented only by the types in this package.
type Value interface {
	Kind() Kind
	sealed()
}

type (
	Null     struct{}
	Bool     bool
	Number   float64
	String   string
	Sequence []Value
)

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Number) Kind() Kind   { return KindNumber }
func (String) Kind() Kind   { return KindString }
func (Sequence) Kind() Kind { return KindSequence }

func (Null) sealed()     {}
func (Bool) sealed()     {}
func (Number) sealed()   {}
func (String) sealed()   {}
func (Sequence) sealed() {}

// Mapping is a string-keyed map that remembers insertion order.
type Mapping struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{m: orderedmap.New[string, Value]()}
}

func (*Mapping) Kind() Kind { return KindMapping }
func (*Mapping) sealed()    {}

// Set inserts or replaces key. Replacing keeps the original position.
func (m *Mapping) Set(key string, v Value) *Mapping {
	m.m.Set(key, v)
	return m
}

// Get looks up key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil || m.m == nil {
		return nil, false
	}
	return m.m.Get(key)
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Len()
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Each(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Each visits entries in insertion order until fn returns false.
func (m *Mapping) Each(fn func(key string, v Value) bool) {
	if m == nil || m.m == nil {
		return
	}
	for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// IsStructured reports whether v is a Sequence or Mapping.
func IsStructured(v Value) bool {
	if v == nil {
		return false
	}
	k := v.Kind()
	return k == KindSequence || k == KindMapping
}

// IsNullish reports whether v is undefined or Null.
func IsNullish(v Value) bool {
	if v == nil {
		return true
	}
	if m, ok := v.(*Mapping); ok && m == nil {
		return true
	}
	return v.Kind() == KindNull
}

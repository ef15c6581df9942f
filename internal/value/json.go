package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// maxDepth bounds nesting for both decoding and encoding.
const maxDepth = 512

// ErrTooDeep is returned when a document nests deeper than maxDepth.
var ErrTooDeep = errors.New("value: nesting too deep")

// ── Decoding ───────────────────────────────────────────────

// ParseJSON decodes a single JSON document into a Value, keeping object
// key order as it appears in the input.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decode(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("value: trailing data after document")
	}
	return v, nil
}

// Decode reads the next JSON document from dec. dec should have UseNumber set;
// plain float64 tokens are accepted too.
func Decode(dec *json.Decoder) (Value, error) {
	return decode(dec, 0)
}

func decode(dec *json.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		if depth > 0 && errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("value: number %q: %w", t, err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			seq := Sequence{}
			for dec.More() {
				item, err := decode(dec, depth+1)
				if err != nil {
					return nil, err
				}
				seq = append(seq, item)
			}
			if _, err := innerToken(dec); err != nil {
				return nil, err
			}
			return seq, nil
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := innerToken(dec)
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("value: unexpected object key %v", keyTok)
				}
				item, err := decode(dec, depth+1)
				if err != nil {
					return nil, err
				}
				m.Set(key, item)
			}
			if _, err := innerToken(dec); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("value: unexpected token %v", tok)
}

// innerToken reads a token inside an open array or object, where running
// out of input means the document was cut off.
func innerToken(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

// ── Encoding ───────────────────────────────────────────────

// MarshalJSON renders v as compact JSON. Mapping keys keep insertion order,
// HTML characters are not escaped and non-finite numbers become null.
// An undefined (nil) value has no JSON form and is reported as an error.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v Value, depth int) error {
	if depth > maxDepth {
		return ErrTooDeep
	}
	switch t := v.(type) {
	case nil:
		return errors.New("value: cannot encode undefined")
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(t)))
	case Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
		} else {
			buf.WriteString(FormatNumber(f))
		}
	case String:
		writeString(buf, string(t))
	case Sequence:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if item == nil {
				buf.WriteString("null")
				continue
			}
			if err := encode(buf, item, depth+1); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Mapping:
		if t == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		first := true
		var err error
		t.Each(func(k string, item Value) bool {
			// Undefined members are omitted.
			if item == nil {
				return true
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeString(buf, k)
			buf.WriteByte(':')
			err = encode(buf, item, depth+1)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: unsupported type %T", v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a Go string cannot fail.
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// ── Numbers ────────────────────────────────────────────────

// FormatNumber renders a finite float the way JavaScript's Number#toString
// does: plain decimal between 1e-6 and 1e21, exponent notation outside.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + string(sign) + digits
}

package core

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind is the JSON scalar type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a JSON-safe cell value. The constructors guarantee that NaN,
// ±Infinity and the tokens "nan"/"NaT" never survive as anything but null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// nullTokens are the textual leftovers of missing numbers and dates.
var nullTokens = map[string]bool{
	"nan": true,
	"NaT": true,
}

// NullValue returns the explicit null.
func NullValue() Value {
	return Value{}
}

// StringValue wraps s; the null tokens become null.
func StringValue(s string) Value {
	if nullTokens[s] {
		return Value{}
	}
	return Value{kind: KindString, s: s}
}

// IntValue wraps i.
func IntValue(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// FloatValue wraps f; NaN and ±Inf become null.
func FloatValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// BoolValue wraps b.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind returns the scalar type.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the explicit null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text returns the textual form used for substring matching and embedding.
// Null has no text.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Interface returns the natural Go scalar (nil, string, int64, float64 or bool).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

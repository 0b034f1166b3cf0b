package types

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindList
	KindString
	KindFloat
	KindInteger
	KindBoolean
	KindRegex
)

// String returns the user-facing type name of the kind, as used in cast errors.
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindRegex:
		return "regex"
	default:
		return "none"
	}
}

// Value is the dynamic runtime value of the expression language.
//
// It is a closed tagged union: exactly one of the payload fields is meaningful,
// as indicated by Kind. The zero Value is None. Values are small and are
// passed by value; a List shares its backing slice, which must be treated as
// immutable once the value has been handed to another function.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	list []Value
	re   *regexp.Regexp
}

// None is the explicit absence value.
var None = Value{}

// NewString returns a String value.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewInteger returns an Integer value.
func NewInteger(i int64) Value { return Value{kind: KindInteger, i: i} }

// NewFloat returns a Float value.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewBoolean returns a Boolean value.
func NewBoolean(b bool) Value { return Value{kind: KindBoolean, i: boolToInt(b)} }

// NewList returns a List value wrapping items. The slice is not copied.
func NewList(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// NewRegex returns a Regex value. A nil pattern yields None.
func NewRegex(re *regexp.Regexp) Value {
	if re == nil {
		return None
	}
	return Value{kind: KindRegex, re: re}
}

// FromNumber converts a Number into the matching Value variant.
func FromNumber(n Number) Value {
	if n.IsFloat() {
		return NewFloat(n.f)
	}
	return NewInteger(n.i)
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// TypeOf returns the type name of v: list, string, float, integer, boolean, regex or none.
func (v Value) TypeOf() string { return v.kind.String() }

// IsNone reports whether v is the absence value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsTruthy reports the truthiness of v.
//
// Floats are truthy when equal to zero. This mirrors the behavior of the
// historical implementation and is kept so existing expressions keep their
// meaning.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindList:
		return len(v.list) > 0
	case KindString:
		return v.str != ""
	case KindFloat:
		return v.f == 0.0
	case KindInteger:
		return v.i != 0
	case KindBoolean:
		return v.i != 0
	case KindRegex:
		return v.re.String() != ""
	default:
		return false
	}
}

// IsFalsey is the negation of IsTruthy.
func (v Value) IsFalsey() bool { return !v.IsTruthy() }

// AsString converts v to a string. Lists cannot be converted.
func (v Value) AsString() (string, error) {
	switch v.kind {
	case KindList:
		return "", NewCastError(KindList.String(), "string")
	case KindString:
		return v.str, nil
	case KindFloat:
		return FormatFloat(v.f), nil
	case KindInteger:
		return strconv.FormatInt(v.i, 10), nil
	case KindBoolean:
		if v.i != 0 {
			return "true", nil
		}
		return "false", nil
	case KindRegex:
		return v.re.String(), nil
	default:
		return "", nil
	}
}

// AsNumber converts v to a Number. Strings are parsed, preferring integers.
func (v Value) AsNumber() (Number, error) {
	switch v.kind {
	case KindString:
		if i, err := strconv.ParseInt(v.str, 10, 64); err == nil {
			return IntegerNumber(i), nil
		}
		if f, err := strconv.ParseFloat(v.str, 64); err == nil {
			return FloatNumber(f), nil
		}
		return Number{}, NewCastError("string", "number")
	case KindInteger:
		return IntegerNumber(v.i), nil
	case KindFloat:
		return FloatNumber(v.f), nil
	case KindBoolean:
		return IntegerNumber(v.i), nil
	default:
		return Number{}, NewCastError(v.TypeOf(), "number")
	}
}

// AsInteger converts v to an int64. Floats must be integral.
func (v Value) AsInteger() (int64, error) {
	switch v.kind {
	case KindString:
		i, err := strconv.ParseInt(v.str, 10, 64)
		if err != nil {
			return 0, NewCastError("string", "integer")
		}
		return i, nil
	case KindFloat:
		i, ok := DowngradeFloat(v.f)
		if !ok {
			return 0, NewCastError("float", "integer")
		}
		return i, nil
	case KindInteger, KindBoolean:
		return v.i, nil
	default:
		return 0, NewCastError(v.TypeOf(), "integer")
	}
}

// AsFloat converts v to a float64.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, NewCastError("string", "float")
		}
		return f, nil
	case KindFloat:
		return v.f, nil
	case KindInteger, KindBoolean:
		return float64(v.i), nil
	default:
		return 0, NewCastError(v.TypeOf(), "float")
	}
}

// AsUint converts v to a non-negative int, suitable for indices and counts.
func (v Value) AsUint() (int, error) {
	const target = "unsigned_number"

	switch v.kind {
	case KindString:
		u, err := strconv.ParseUint(v.str, 10, strconv.IntSize-1)
		if err != nil {
			return 0, NewCastError("string", target)
		}
		return int(u), nil
	case KindFloat:
		i, ok := DowngradeFloat(v.f)
		if !ok || i < 0 || i > math.MaxInt {
			return 0, NewCastError("float", target)
		}
		return int(i), nil
	case KindInteger:
		if v.i < 0 || v.i > math.MaxInt {
			return 0, NewCastError("integer", target)
		}
		return int(v.i), nil
	case KindBoolean:
		return int(v.i), nil
	default:
		return 0, NewCastError(v.TypeOf(), target)
	}
}

// AsList returns the items of a List value.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, NewCastError(v.TypeOf(), "list")
	}
	return v.list, nil
}

// AsRegex returns the compiled pattern of a Regex value.
func (v Value) AsRegex() (*regexp.Regexp, error) {
	if v.kind != KindRegex {
		return nil, NewCastError(v.TypeOf(), "regex")
	}
	return v.re, nil
}

// Serialize renders v as raw bytes for output. List items are serialized
// recursively and joined with separator.
func (v Value) Serialize(separator []byte) []byte {
	if v.kind != KindList {
		s, _ := v.AsString()
		return []byte(s)
	}

	var buf bytes.Buffer
	for i, item := range v.list {
		if i > 0 {
			buf.Write(separator)
		}
		buf.Write(item.Serialize(separator))
	}
	return buf.Bytes()
}

// String implements fmt.Stringer using "|" as list separator.
func (v Value) String() string {
	return string(v.Serialize([]byte("|")))
}

// Equal reports variant-wise exact equality. Integer 3 and Float 3.0 are
// not equal; use Number comparison for numeric-domain equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindString:
		return v.str == other.str
	case KindFloat:
		return v.f == other.f
	case KindInteger, KindBoolean:
		return v.i == other.i
	case KindRegex:
		return v.re.String() == other.re.String()
	default:
		return true
	}
}

// FormatFloat renders a float the way values are written to CSV output:
// shortest representation, no exponent, "inf", "-inf" and "NaN" for
// non-finite values.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DowngradeFloat returns f as an int64 when the conversion is exact.
func DowngradeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

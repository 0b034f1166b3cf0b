package types

import (
	"math"
	"strconv"
)

// Number is the numeric subtype of Value: either an Integer or a Float.
//
// Binary operations between an Integer and a Float promote the Integer side
// to Float. Integer with Integer stays Integer, except for Div which always
// produces a Float.
type Number struct {
	float bool
	i     int64
	f     float64
}

// IntegerNumber returns an Integer Number.
func IntegerNumber(i int64) Number { return Number{i: i} }

// FloatNumber returns a Float Number.
func FloatNumber(f float64) Number { return Number{float: true, f: f} }

// IsFloat reports whether n is a Float.
func (n Number) IsFloat() bool { return n.float }

// Int returns the integer payload. Only meaningful when !IsFloat().
func (n Number) Int() int64 { return n.i }

// Float64 returns n as a float64, widening integers.
func (n Number) Float64() float64 {
	if n.float {
		return n.f
	}
	return float64(n.i)
}

// String renders n like Value.AsString does.
func (n Number) String() string {
	if n.float {
		return FormatFloat(n.f)
	}
	return strconv.FormatInt(n.i, 10)
}

// Value converts n back into a Value.
func (n Number) Value() Value { return FromNumber(n) }

func applyOp(a, b Number, opInt func(int64, int64) int64, opFloat func(float64, float64) float64) Number {
	if !a.float && !b.float {
		return IntegerNumber(opInt(a.i, b.i))
	}
	return FloatNumber(opFloat(a.Float64(), b.Float64()))
}

// Add returns n + other.
func (n Number) Add(other Number) Number {
	return applyOp(n, other,
		func(a, b int64) int64 { return a + b },
		func(a, b float64) float64 { return a + b })
}

// Sub returns n - other.
func (n Number) Sub(other Number) Number {
	return applyOp(n, other,
		func(a, b int64) int64 { return a - b },
		func(a, b float64) float64 { return a - b })
}

// Mul returns n * other.
func (n Number) Mul(other Number) Number {
	return applyOp(n, other,
		func(a, b int64) int64 { return a * b },
		func(a, b float64) float64 { return a * b })
}

// Div returns n / other, always as a Float.
func (n Number) Div(other Number) Number {
	return FloatNumber(n.Float64() / other.Float64())
}

// IDiv returns the floor of the true quotient as an Integer.
// Out of range quotients saturate and NaN becomes zero.
func (n Number) IDiv(other Number) Number {
	return IntegerNumber(saturatingInt(math.Floor(n.Float64() / other.Float64())))
}

// Mod returns the remainder of n / other. Integer modulo by zero yields a
// NaN Float rather than panicking.
func (n Number) Mod(other Number) Number {
	if !n.float && !other.float {
		if other.i == 0 {
			return FloatNumber(math.NaN())
		}
		return IntegerNumber(n.i % other.i)
	}
	return FloatNumber(math.Mod(n.Float64(), other.Float64()))
}

// Pow returns n raised to other. Non-negative integer exponents on integers
// stay integral.
func (n Number) Pow(other Number) Number {
	if !n.float && !other.float && other.i >= 0 {
		result := int64(1)
		base := n.i
		for e := other.i; e > 0; e >>= 1 {
			if e&1 == 1 {
				result *= base
			}
			base *= base
		}
		return IntegerNumber(result)
	}
	return FloatNumber(math.Pow(n.Float64(), other.Float64()))
}

// Neg returns -n, preserving the variant.
func (n Number) Neg() Number {
	if n.float {
		return FloatNumber(-n.f)
	}
	return IntegerNumber(-n.i)
}

// Abs returns |n|, preserving the variant.
func (n Number) Abs() Number {
	if n.float {
		return FloatNumber(math.Abs(n.f))
	}
	if n.i < 0 {
		return IntegerNumber(-n.i)
	}
	return n
}

// Inc returns n + 1, preserving the variant.
func (n Number) Inc() Number {
	if n.float {
		return FloatNumber(n.f + 1)
	}
	return IntegerNumber(n.i + 1)
}

// Dec returns n - 1, preserving the variant.
func (n Number) Dec() Number {
	if n.float {
		return FloatNumber(n.f - 1)
	}
	return IntegerNumber(n.i - 1)
}

// Equal compares in the numeric domain: Integer 3 equals Float 3.0.
func (n Number) Equal(other Number) bool {
	if !n.float && !other.float {
		return n.i == other.i
	}
	return n.Float64() == other.Float64()
}

// Compare returns -1, 0 or +1. The second result is false when the values
// are not comparable (NaN involved).
func (n Number) Compare(other Number) (int, bool) {
	if !n.float && !other.float {
		switch {
		case n.i < other.i:
			return -1, true
		case n.i > other.i:
			return 1, true
		default:
			return 0, true
		}
	}

	a, b := n.Float64(), other.Float64()
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0, false
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}

// Less reports n < other in the numeric domain. NaN is never less.
func (n Number) Less(other Number) bool {
	c, ok := n.Compare(other)
	return ok && c < 0
}

func saturatingInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberPromotion(t *testing.T) {
	ints := []Number{IntegerNumber(7), IntegerNumber(-3)}
	floats := []Number{FloatNumber(2.5), FloatNumber(-0.5)}

	ops := map[string]func(a, b Number) Number{
		"add": Number.Add,
		"sub": Number.Sub,
		"mul": Number.Mul,
		"mod": Number.Mod,
		"pow": Number.Pow,
	}

	for name, op := range ops {
		assert.False(t, op(ints[0], ints[1]).IsFloat() && name != "pow", "%s int/int", name)
		for _, i := range ints {
			for _, f := range floats {
				assert.True(t, op(i, f).IsFloat(), "%s int/float", name)
				assert.True(t, op(f, i).IsFloat(), "%s float/int", name)
			}
		}
	}

	assert.True(t, IntegerNumber(4).Div(IntegerNumber(2)).IsFloat())
	assert.False(t, FloatNumber(7.5).IDiv(IntegerNumber(2)).IsFloat())
}

func TestNumberIDiv(t *testing.T) {
	tests := []struct {
		a, b Number
		want int64
	}{
		{IntegerNumber(7), IntegerNumber(2), 3},
		{IntegerNumber(-7), IntegerNumber(2), -4},
		{FloatNumber(7.5), IntegerNumber(2), 3},
		{IntegerNumber(1), IntegerNumber(0), math.MaxInt64},
		{IntegerNumber(-1), IntegerNumber(0), math.MinInt64},
		{IntegerNumber(0), IntegerNumber(0), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.IDiv(tt.b).Int(), "%s // %s", tt.a, tt.b)
	}
}

func TestNumberMod(t *testing.T) {
	assert.Equal(t, int64(1), IntegerNumber(7).Mod(IntegerNumber(3)).Int())
	assert.Equal(t, int64(-1), IntegerNumber(-7).Mod(IntegerNumber(3)).Int())
	assert.True(t, math.IsNaN(IntegerNumber(7).Mod(IntegerNumber(0)).Float64()))
	assert.Equal(t, 1.5, FloatNumber(7.5).Mod(IntegerNumber(3)).Float64())
}

func TestNumberPow(t *testing.T) {
	got := IntegerNumber(3).Pow(IntegerNumber(4))
	assert.False(t, got.IsFloat())
	assert.Equal(t, int64(81), got.Int())

	got = IntegerNumber(2).Pow(IntegerNumber(-1))
	assert.True(t, got.IsFloat())
	assert.Equal(t, 0.5, got.Float64())
}

func TestNumberUnary(t *testing.T) {
	assert.Equal(t, "-3", IntegerNumber(3).Neg().String())
	assert.Equal(t, "2.5", FloatNumber(-2.5).Abs().String())
	assert.Equal(t, "5", IntegerNumber(-5).Abs().String())
	assert.Equal(t, "1.5", FloatNumber(0.5).Inc().String())
	assert.Equal(t, "-1", IntegerNumber(0).Dec().String())
}

func TestNumberCompare(t *testing.T) {
	assert.True(t, IntegerNumber(3).Equal(FloatNumber(3)))
	assert.True(t, IntegerNumber(2).Less(FloatNumber(2.5)))
	assert.False(t, FloatNumber(math.NaN()).Less(IntegerNumber(1)))

	c, ok := IntegerNumber(5).Compare(IntegerNumber(2))
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	_, ok = FloatNumber(math.NaN()).Compare(FloatNumber(1))
	assert.False(t, ok)
}

func TestFromNumber(t *testing.T) {
	assert.Equal(t, "integer", IntegerNumber(1).Value().TypeOf())
	assert.Equal(t, "float", FloatNumber(1).Value().TypeOf())
}

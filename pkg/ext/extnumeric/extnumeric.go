// Package extnumeric provides extended numeric and statistical functions for
// xan expressions. Statistical functions flatten their arguments, so they
// accept lists as produced by split as well as plain values.
package extnumeric

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/A-Archives-and-Forks/xan/pkg/ext/extutil"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// All returns all extended numeric function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		Sign(),
		Clamp(),
		Sin(),
		Cos(),
		Tan(),
		Asin(),
		Acos(),
		Atan(),
		Atan2(),
		Exp(),
		Pi(),
		E(),
		Mean(),
		Median(),
		Variance(),
		Stddev(),
		Percentile(),
		Mode(),
	}
}

// Sign returns the definition for sign(x): -1, 0 or 1.
func Sign() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "sign",
		MinArgs:     1,
		MaxArgs:     1,
		Help:        "sign(x) -> integer",
		Description: "Return -1, 0 or 1 depending on the sign of x.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			n, err := extutil.Number(args, 0)
			if err != nil {
				return types.None, err
			}
			c, ok := n.Compare(types.IntegerNumber(0))
			if !ok {
				return types.NewFloat(math.NaN()), nil
			}
			return types.NewInteger(int64(c)), nil
		},
	}
}

// Clamp returns the definition for clamp(x, low, high).
func Clamp() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "clamp",
		MinArgs:     3,
		MaxArgs:     3,
		Help:        "clamp(x, low, high) -> number",
		Description: "Restrict x to the [low, high] interval.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			var nums [3]types.Number
			for i := range nums {
				n, err := extutil.Number(args, i)
				if err != nil {
					return types.None, err
				}
				nums[i] = n
			}
			x, low, high := nums[0], nums[1], nums[2]
			if high.Less(low) {
				return types.None, fmt.Errorf("low %s is greater than high %s", low, high)
			}
			switch {
			case x.Less(low):
				return low.Value(), nil
			case high.Less(x):
				return high.Value(), nil
			default:
				return x.Value(), nil
			}
		},
	}
}

func Sin() functions.CustomFunctionDef  { return mathFunc1("sin", math.Sin) }
func Cos() functions.CustomFunctionDef  { return mathFunc1("cos", math.Cos) }
func Tan() functions.CustomFunctionDef  { return mathFunc1("tan", math.Tan) }
func Asin() functions.CustomFunctionDef { return mathFunc1("asin", math.Asin) }
func Acos() functions.CustomFunctionDef { return mathFunc1("acos", math.Acos) }
func Atan() functions.CustomFunctionDef { return mathFunc1("atan", math.Atan) }
func Exp() functions.CustomFunctionDef  { return mathFunc1("exp", math.Exp) }

// Atan2 returns the definition for atan2(y, x).
func Atan2() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "atan2",
		MinArgs:     2,
		MaxArgs:     2,
		Help:        "atan2(y, x) -> float",
		Description: "Return the arc tangent of y/x, using the signs of both to pick the quadrant.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			y, err := extutil.Float(args, 0)
			if err != nil {
				return types.None, err
			}
			x, err := extutil.Float(args, 1)
			if err != nil {
				return types.None, err
			}
			return types.NewFloat(math.Atan2(y, x)), nil
		},
	}
}

// Pi returns the definition for pi().
func Pi() functions.CustomFunctionDef { return constant("pi", math.Pi) }

// E returns the definition for e().
func E() functions.CustomFunctionDef { return constant("e", math.E) }

// Mean returns the definition for mean(*n).
func Mean() functions.CustomFunctionDef {
	return aggregate("mean", "Return the arithmetic mean of the given numbers.", func(nums []float64) types.Value {
		return types.NewFloat(mean(nums))
	})
}

// Median returns the definition for median(*n).
func Median() functions.CustomFunctionDef {
	return aggregate("median", "Return the median of the given numbers.", func(nums []float64) types.Value {
		sorted := slices.Clone(nums)
		slices.Sort(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return types.NewFloat((sorted[mid-1] + sorted[mid]) / 2)
		}
		return types.NewFloat(sorted[mid])
	})
}

// Variance returns the definition for variance(*n), the population variance.
func Variance() functions.CustomFunctionDef {
	return aggregate("variance", "Return the population variance of the given numbers.", func(nums []float64) types.Value {
		return types.NewFloat(variance(nums))
	})
}

// Stddev returns the definition for stddev(*n), the population standard deviation.
func Stddev() functions.CustomFunctionDef {
	return aggregate("stddev", "Return the population standard deviation of the given numbers.", func(nums []float64) types.Value {
		return types.NewFloat(math.Sqrt(variance(nums)))
	})
}

// Mode returns the definition for mode(*n). Ties resolve to the value seen
// first.
func Mode() functions.CustomFunctionDef {
	return aggregate("mode", "Return the most frequent of the given numbers.", func(nums []float64) types.Value {
		counts := make(map[float64]int, len(nums))
		best, bestCount := nums[0], 0
		for _, n := range nums {
			counts[n]++
			if counts[n] > bestCount {
				best, bestCount = n, counts[n]
			}
		}
		return types.NewFloat(best)
	})
}

// Percentile returns the definition for percentile(list, p), p in [0, 100],
// using linear interpolation between closest ranks.
func Percentile() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "percentile",
		MinArgs:     2,
		MaxArgs:     2,
		Help:        "percentile(list, p) -> float",
		Description: "Return the p-th percentile of the numbers in list.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			nums, err := extutil.Floats(args[:1])
			if err != nil {
				return types.None, err
			}
			p, err := extutil.Float(args, 1)
			if err != nil {
				return types.None, err
			}
			if p < 0 || p > 100 {
				return types.None, errors.New("p must be between 0 and 100")
			}
			if len(nums) == 0 {
				return types.None, nil
			}

			sorted := slices.Clone(nums)
			slices.Sort(sorted)
			idx := p / 100 * float64(len(sorted)-1)
			lo := int(math.Floor(idx))
			hi := int(math.Ceil(idx))
			if lo == hi {
				return types.NewFloat(sorted[lo]), nil
			}
			frac := idx - float64(lo)
			return types.NewFloat(sorted[lo]*(1-frac) + sorted[hi]*frac), nil
		},
	}
}

// ── helpers ────────────────────────────────────────────────────────────────

func mathFunc1(name string, fn func(float64) float64) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Help:    name + "(x) -> float",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			x, err := extutil.Float(args, 0)
			if err != nil {
				return types.None, err
			}
			return types.NewFloat(fn(x)), nil
		},
	}
}

func constant(name string, value float64) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:    name,
		MinArgs: 0,
		MaxArgs: 0,
		Help:    name + "() -> float",
		Fn: func(context.Context, ...types.Value) (types.Value, error) {
			return types.NewFloat(value), nil
		},
	}
}

// aggregate builds a variadic function over the flattened numeric leaves of
// its arguments. It yields None when there are no numbers.
func aggregate(name, description string, fn func([]float64) types.Value) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     1,
		MaxArgs:     -1,
		Help:        name + "(*n) -> float",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			nums, err := extutil.Floats(args)
			if err != nil {
				return types.None, err
			}
			if len(nums) == 0 {
				return types.None, nil
			}
			return fn(nums), nil
		},
	}
}

func mean(nums []float64) float64 {
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}

func variance(nums []float64) float64 {
	m := mean(nums)
	total := 0.0
	for _, n := range nums {
		diff := n - m
		total += diff * diff
	}
	return total / float64(len(nums))
}

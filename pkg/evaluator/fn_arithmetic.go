package evaluator

import (
	"context"
	"math"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// --- Arithmetic Functions ---

func foldNumbers(args *BoundArguments, op func(a, b types.Number) types.Number) (types.Value, error) {
	if err := args.ValidateMinArity(2); err != nil {
		return types.None, err
	}

	var acc types.Number
	for i, v := range args.All() {
		n, err := v.AsNumber()
		if err != nil {
			return types.None, err
		}
		if i == 0 {
			acc = n
			continue
		}
		acc = op(acc, n)
	}

	return acc.Value(), nil
}

func binaryNumber(args *BoundArguments, op func(a, b types.Number) types.Number) (types.Value, error) {
	a, b, err := args.Get2Number()
	if err != nil {
		return types.None, err
	}
	return op(a, b).Value(), nil
}

func unaryNumber(args *BoundArguments, op func(n types.Number) types.Number) (types.Value, error) {
	n, err := args.Pop1Number()
	if err != nil {
		return types.None, err
	}
	return op(n).Value(), nil
}

// unaryRounding applies op to floats. Integers are returned as is.
func unaryRounding(args *BoundArguments, op func(float64) float64) (types.Value, error) {
	return unaryNumber(args, func(n types.Number) types.Number {
		if !n.IsFloat() {
			return n
		}
		return types.FloatNumber(op(n.Float64()))
	})
}

func fnAdd(_ context.Context, args *BoundArguments) (types.Value, error) {
	return foldNumbers(args, types.Number.Add)
}

func fnSub(_ context.Context, args *BoundArguments) (types.Value, error) {
	return binaryNumber(args, types.Number.Sub)
}

func fnMul(_ context.Context, args *BoundArguments) (types.Value, error) {
	return foldNumbers(args, types.Number.Mul)
}

func fnDiv(_ context.Context, args *BoundArguments) (types.Value, error) {
	return binaryNumber(args, types.Number.Div)
}

func fnIDiv(_ context.Context, args *BoundArguments) (types.Value, error) {
	return binaryNumber(args, types.Number.IDiv)
}

func fnMod(_ context.Context, args *BoundArguments) (types.Value, error) {
	return binaryNumber(args, types.Number.Mod)
}

func fnPow(_ context.Context, args *BoundArguments) (types.Value, error) {
	return binaryNumber(args, types.Number.Pow)
}

func fnNeg(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryNumber(args, types.Number.Neg)
}

func fnAbs(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryNumber(args, types.Number.Abs)
}

func fnInc(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryNumber(args, types.Number.Inc)
}

func fnDec(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryNumber(args, types.Number.Dec)
}

func fnFloor(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryRounding(args, math.Floor)
}

func fnCeil(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryRounding(args, math.Ceil)
}

func fnRound(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryRounding(args, math.Round)
}

func fnTrunc(_ context.Context, args *BoundArguments) (types.Value, error) {
	return unaryRounding(args, math.Trunc)
}

func fnSqrt(_ context.Context, args *BoundArguments) (types.Value, error) {
	n, err := args.Pop1Number()
	if err != nil {
		return types.None, err
	}
	return types.NewFloat(math.Sqrt(n.Float64())), nil
}

func fnLog(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinMaxArity(1, 2); err != nil {
		return types.None, err
	}

	slots := args.GetN(2)
	x, err := slots[0].AsFloat()
	if err != nil {
		return types.None, err
	}

	if slots[1] == nil {
		return types.NewFloat(math.Log(x)), nil
	}

	base, err := slots[1].AsFloat()
	if err != nil {
		return types.None, err
	}
	return types.NewFloat(math.Log(x) / math.Log(base)), nil
}

// variadicExtremum scans every scalar of every argument, keeping the one for
// which better(candidate, current) holds. No scalar at all yields None.
func variadicExtremum(args *BoundArguments, better func(candidate, current types.Number) bool) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	var (
		best  types.Number
		found bool
	)
	for _, v := range args.All() {
		for leaf := range v.Flat() {
			n, err := leaf.AsNumber()
			if err != nil {
				return types.None, err
			}
			if !found || better(n, best) {
				best = n
				found = true
			}
		}
	}

	if !found {
		return types.None, nil
	}
	return best.Value(), nil
}

func fnMin(_ context.Context, args *BoundArguments) (types.Value, error) {
	return variadicExtremum(args, types.Number.Less)
}

func fnMax(_ context.Context, args *BoundArguments) (types.Value, error) {
	return variadicExtremum(args, func(candidate, current types.Number) bool {
		return current.Less(candidate)
	})
}

func fnSum(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	total := types.IntegerNumber(0)
	for _, v := range args.All() {
		for leaf := range v.Flat() {
			n, err := leaf.AsNumber()
			if err != nil {
				return types.None, err
			}
			total = total.Add(n)
		}
	}

	return total.Value(), nil
}

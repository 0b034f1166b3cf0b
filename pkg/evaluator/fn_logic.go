package evaluator

import (
	"context"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// --- Boolean Functions ---

func fnAnd(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(2); err != nil {
		return types.None, err
	}

	var last types.Value
	for _, v := range args.All() {
		if v.IsFalsey() {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func fnOr(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(2); err != nil {
		return types.None, err
	}

	var last types.Value
	for _, v := range args.All() {
		if v.IsTruthy() {
			return v, nil
		}
		last = v
	}
	return last, nil
}

func fnNot(_ context.Context, args *BoundArguments) (types.Value, error) {
	b, err := args.Pop1Bool()
	if err != nil {
		return types.None, err
	}
	return types.NewBoolean(!b), nil
}

// branch implements if and unless. Both branches have already been
// evaluated by the time the function runs.
func branch(args *BoundArguments, when bool) (types.Value, error) {
	if err := args.ValidateMinMaxArity(2, 3); err != nil {
		return types.None, err
	}

	slots := args.GetN(3)
	if slots[0].IsTruthy() == when {
		return *slots[1], nil
	}
	if slots[2] == nil {
		return types.None, nil
	}
	return *slots[2], nil
}

func fnIf(_ context.Context, args *BoundArguments) (types.Value, error) {
	return branch(args, true)
}

func fnUnless(_ context.Context, args *BoundArguments) (types.Value, error) {
	return branch(args, false)
}

func fnCoalesce(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	for _, v := range args.All() {
		if !isEmpty(v) {
			return v, nil
		}
	}
	return types.None, nil
}

// isEmpty reports whether v is None, an empty string or an empty list.
func isEmpty(v types.Value) bool {
	switch v.Kind() {
	case types.KindNone:
		return true
	case types.KindString:
		s, _ := v.AsString()
		return s == ""
	case types.KindList:
		items, _ := v.AsList()
		return len(items) == 0
	default:
		return false
	}
}

// --- Comparison Functions ---

func compareNumbers(args *BoundArguments, accept func(c int) bool) (types.Value, error) {
	a, b, err := args.Get2Number()
	if err != nil {
		return types.None, err
	}
	c, ok := a.Compare(b)
	return types.NewBoolean(ok && accept(c)), nil
}

func fnEq(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareNumbers(args, func(c int) bool { return c == 0 })
}

func fnNe(_ context.Context, args *BoundArguments) (types.Value, error) {
	a, b, err := args.Get2Number()
	if err != nil {
		return types.None, err
	}
	c, ok := a.Compare(b)
	return types.NewBoolean(!ok || c != 0), nil
}

func fnGt(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareNumbers(args, func(c int) bool { return c > 0 })
}

func fnGe(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareNumbers(args, func(c int) bool { return c >= 0 })
}

func fnLt(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareNumbers(args, func(c int) bool { return c < 0 })
}

func fnLe(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareNumbers(args, func(c int) bool { return c <= 0 })
}

func compareStrings(args *BoundArguments, accept func(a, b string) bool) (types.Value, error) {
	a, b, err := args.Get2Str()
	if err != nil {
		return types.None, err
	}
	return types.NewBoolean(accept(a, b)), nil
}

func fnStrEq(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareStrings(args, func(a, b string) bool { return a == b })
}

func fnStrNe(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareStrings(args, func(a, b string) bool { return a != b })
}

func fnStrGt(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareStrings(args, func(a, b string) bool { return a > b })
}

func fnStrGe(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareStrings(args, func(a, b string) bool { return a >= b })
}

func fnStrLt(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareStrings(args, func(a, b string) bool { return a < b })
}

func fnStrLe(_ context.Context, args *BoundArguments) (types.Value, error) {
	return compareStrings(args, func(a, b string) bool { return a <= b })
}

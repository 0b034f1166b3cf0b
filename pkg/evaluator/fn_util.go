package evaluator

import (
	"context"
	"path/filepath"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// --- Utility Functions ---

func fnTypeOf(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}
	return types.NewString(v.TypeOf()), nil
}

func fnVal(_ context.Context, args *BoundArguments) (types.Value, error) {
	return args.Pop1()
}

func fnIsNull(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}
	return types.NewBoolean(v.IsNone() || (v.Kind() == types.KindString && isEmpty(v))), nil
}

func fnIsFloat(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}
	n, err := v.AsNumber()
	return types.NewBoolean(err == nil && n.IsFloat()), nil
}

func fnIsInt(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}
	if v.Kind() == types.KindBoolean {
		return types.NewBoolean(false), nil
	}
	n, err := v.AsNumber()
	return types.NewBoolean(err == nil && !n.IsFloat()), nil
}

func fnPathJoin(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	parts := make([]string, 0, args.Len())
	for _, v := range args.All() {
		s, err := v.AsString()
		if err != nil {
			return types.None, err
		}
		parts = append(parts, s)
	}
	return types.NewString(filepath.Join(parts...)), nil
}

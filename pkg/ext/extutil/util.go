// Package extutil provides shared helpers for the ext sub-packages.
//
// Conversion errors are returned as-is; the evaluator names the calling
// function when it wraps them.
package extutil

import (
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// String converts the argument at index i to a string.
func String(args []types.Value, i int) (string, error) {
	return args[i].AsString()
}

// Number converts the argument at index i to a number.
func Number(args []types.Value, i int) (types.Number, error) {
	return args[i].AsNumber()
}

// Float converts the argument at index i to a float64.
func Float(args []types.Value, i int) (float64, error) {
	return args[i].AsFloat()
}

// Int converts the argument at index i to an int64.
func Int(args []types.Value, i int) (int64, error) {
	return args[i].AsInteger()
}

// Uint converts the argument at index i to a non-negative int.
func Uint(args []types.Value, i int) (int, error) {
	return args[i].AsUint()
}

// List returns the items of the list argument at index i.
func List(args []types.Value, i int) ([]types.Value, error) {
	return args[i].AsList()
}

// Optional reports whether the optional argument at index i was given and
// is not None.
func Optional(args []types.Value, i int) bool {
	return i < len(args) && !args[i].IsNone()
}

// Floats collects the numeric leaves of every argument, flattening lists.
func Floats(args []types.Value) ([]float64, error) {
	var out []float64
	for _, arg := range args {
		for leaf := range arg.Flat() {
			f, err := leaf.AsFloat()
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}
	return out, nil
}

// StringList wraps strings into a List value.
func StringList(items []string) types.Value {
	values := make([]types.Value, len(items))
	for i, s := range items {
		values[i] = types.NewString(s)
	}
	return types.NewList(values)
}

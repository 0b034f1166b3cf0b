// Package functions provides types for registering custom expression functions.
//
// Custom functions are registered on the evaluator with
// [evaluator.WithCustomFunction] or [evaluator.WithFunctions] and are then
// callable from expressions exactly like the built-in ones, including as a
// bare name receiving the implicit value.
//
// # Example
//
//	ev := evaluator.New(
//	    evaluator.WithFunctions(functions.CustomFunctionDef{
//	        Name:    "greet",
//	        MinArgs: 1,
//	        MaxArgs: 1,
//	        Fn: func(ctx context.Context, args ...types.Value) (types.Value, error) {
//	            name, err := args[0].AsString()
//	            if err != nil {
//	                return types.None, err
//	            }
//	            return types.NewString("Hello, " + name + "!"), nil
//	        },
//	    }),
//	)
package functions

import (
	"context"
	"fmt"
	"unicode"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// CustomFunc is the signature for user-defined custom functions.
// args contains the evaluated function arguments in order. Arity has
// already been checked against the definition when the function runs.
type CustomFunc func(ctx context.Context, args ...types.Value) (types.Value, error)

// CustomFunctionDef describes a user-defined function together with its
// accepted argument count.
type CustomFunctionDef struct {
	// Name is the function name as it will appear inside expressions.
	Name string
	// MinArgs is the minimum number of arguments.
	MinArgs int
	// MaxArgs is the maximum number of arguments, or -1 for no limit.
	MaxArgs int
	// Help is the usage line shown by the functions listing, e.g. "sign(x) -> integer".
	Help string
	// Description is a one sentence explanation.
	Description string
	// Fn is the implementation.
	Fn CustomFunc
}

// Validate checks that the definition can be registered.
func (d CustomFunctionDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("custom function: empty name")
	}
	for i, r := range d.Name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("custom function %q: invalid character %q in name", d.Name, r)
	}
	if d.Name == "_" {
		return fmt.Errorf("custom function: %q is reserved for the implicit value", d.Name)
	}
	if d.Fn == nil {
		return fmt.Errorf("custom function %q: nil implementation", d.Name)
	}
	if d.MinArgs < 0 {
		return fmt.Errorf("custom function %q: negative MinArgs", d.Name)
	}
	if d.MaxArgs >= 0 && d.MaxArgs < d.MinArgs {
		return fmt.Errorf("custom function %q: MaxArgs %d lower than MinArgs %d", d.Name, d.MaxArgs, d.MinArgs)
	}
	return nil
}

// Variadic reports whether the function accepts an unbounded number of arguments.
func (d CustomFunctionDef) Variadic() bool {
	return d.MaxArgs < 0
}

// Unary is a shorthand for a one argument function.
func Unary(name, help, description string, fn func(ctx context.Context, v types.Value) (types.Value, error)) CustomFunctionDef {
	return CustomFunctionDef{
		Name:        name,
		MinArgs:     1,
		MaxArgs:     1,
		Help:        help,
		Description: description,
		Fn: func(ctx context.Context, args ...types.Value) (types.Value, error) {
			return fn(ctx, args[0])
		},
	}
}

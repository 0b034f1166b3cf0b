// Package xan evaluates moonblade expressions against CSV rows.
//
// Moonblade is the small expression language of the xan toolkit. An
// expression is parsed once, prepared against a header row, then run
// against every record of a file:
//
//	add(a, b)
//	concat(upper(name), ' ', surname)
//	split(tags, '|') | len
//
// # Quick Start
//
//	// One-shot evaluation
//	value, err := xan.Eval("add(a, b)", []string{"a", "b"}, []string{"1", "2"})
//
//	// Prepare once, run on many rows
//	program, err := xan.Prepare("trim | upper", header,
//	    evaluator.WithImplicitColumn(types.ByName("name")))
//	for _, row := range rows {
//	    value, err := program.Run(ctx, row)
//	}
//
// A prepared program is immutable and safe for concurrent use.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/A-Archives-and-Forks/xan/pkg/parser
//   - Evaluator: github.com/A-Archives-and-Forks/xan/pkg/evaluator
//   - Functions: github.com/A-Archives-and-Forks/xan/pkg/functions
//   - Extensions: github.com/A-Archives-and-Forks/xan/pkg/ext
//   - Types: github.com/A-Archives-and-Forks/xan/pkg/types
package xan

import (
	"context"
	"fmt"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/parser"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Version returns the current version of xan.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses an expression. The result only records shape: it must be
// prepared against a header before it can run.
func Compile(query string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(query, opts...)
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(query string) *types.Expression {
	expr, err := Compile(query)
	if err != nil {
		panic(fmt.Sprintf("xan: Compile(%q): %v", query, err))
	}
	return expr
}

// Prepare compiles query and binds it to header with a default evaluator.
func Prepare(query string, header []string, opts ...evaluator.PrepareOption) (*evaluator.Program, error) {
	return evaluator.New().PrepareString(query, header, opts...)
}

// Eval is a convenience function that prepares an expression and runs it on
// a single row.
//
// For repeated evaluations of the same expression, use Prepare instead.
func Eval(query string, header, row []string, opts ...evaluator.EvalOption) (types.Value, error) {
	return EvalWithContext(context.Background(), query, header, row, opts...)
}

// EvalWithContext is Eval with a caller supplied context.
func EvalWithContext(ctx context.Context, query string, header, row []string, opts ...evaluator.EvalOption) (types.Value, error) {
	program, err := evaluator.New(opts...).PrepareString(query, header)
	if err != nil {
		return types.None, err
	}
	return program.Run(ctx, row)
}

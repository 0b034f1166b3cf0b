// Package parser implements the parser of the xan expression language.
//
// The parser is a hand-written recursive descent parser. It only produces
// the shape of an expression: identifiers are not resolved against any header
// and function names are not checked. That validation happens once, when the
// evaluator prepares the expression against a header row.
//
// # Grammar
//
//	expr     := term ( "|" term )*
//	term     := call | name | literal | "(" expr ")"
//	call     := name "(" [ expr ( "," expr )* ] ")"
//	literal  := string | number | "true" | "false" | /regex/flags
//
// The name "_" denotes the implicit value: the previous pipeline stage, or
// the value of the targeted column.
//
// # Example
//
//	expr, err := parser.Parse(`add(a, col("b", 1)) | inc`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ast := expr.AST()
package parser

import (
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Parse parses an expression and returns the resulting Expression.
//
// If parsing fails, it returns a *types.Error with position information.
//
// Example:
//
//	expr, err := parser.Parse("upper(name)")
//	if err != nil {
//	    var perr *types.Error
//	    if errors.As(err, &perr) {
//	        fmt.Printf("Parse error at position %d\n", perr.Position)
//	    }
//	    return
//	}
func Parse(query string) (*types.Expression, error) {
	p := NewParser(query)
	return p.Parse()
}

// Compile is like Parse but accepts options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
func MustCompile(query string, opts ...CompileOption) *types.Expression {
	expr, err := Compile(query, opts...)
	if err != nil {
		panic("parser: Compile(" + query + "): " + err.Error())
	}
	return expr
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits nesting depth to prevent stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

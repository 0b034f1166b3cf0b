// Package types defines the core type system of the xan expression language.
//
// This package contains type definitions for:
//   - Value and Number: the dynamic runtime values and their coercions
//   - ColumnIndexation: column selectors resolved against a header row
//   - Expression and ASTNode: the parsed, unresolved program shape
//   - Error types: syntax errors with codes, cast and arity errors,
//     preparation and evaluation errors
package types

// Expression represents a parsed expression.
//
// An Expression only records shape. It must be prepared against a header row
// by the evaluator before it can be run. It is immutable and safe for
// concurrent use by multiple goroutines.
type Expression struct {
	ast    *ASTNode
	source string
	arena  *NodeArena
}

// NewExpression creates a new Expression from an AST.
func NewExpression(ast *ASTNode, source string) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
	}
}

// NewExpressionWithArena creates an Expression that keeps the arena backing
// its nodes alive.
func NewExpressionWithArena(ast *ASTNode, source string, arena *NodeArena) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
		arena:  arena,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original source code of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}

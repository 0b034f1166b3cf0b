package evaluator

import (
	"context"
	"fmt"
	"slices"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

type nodeKind uint8

const (
	nodeLiteral nodeKind = iota
	nodeColumn
	nodeImplicit
	nodeCall
	nodePipeline
)

// preparedNode is an AST node bound to a header: columns are offsets and
// calls point to their function definition.
type preparedNode struct {
	kind     nodeKind
	position int
	value    types.Value // nodeLiteral
	column   int         // nodeColumn
	fn       *FunctionDef
	args     []*preparedNode // call arguments or pipeline stages
}

// Program is an expression prepared against a header row.
//
// A Program is immutable once prepared: it is safe for concurrent use and
// every Run is independent from the others.
type Program struct {
	expr           *types.Expression
	header         []string
	root           *preparedNode
	columns        []int
	implicit       bool
	implicitColumn int
}

// PrepareOption configures how an expression is bound to a header.
type PrepareOption func(*prepareOptions)

type prepareOptions struct {
	implicitColumn *types.ColumnIndexation
	implicit       bool
}

// WithImplicitColumn makes the value of the selected column the implicit
// value of the expression, as the transform mode does with its target.
func WithImplicitColumn(selector types.ColumnIndexation) PrepareOption {
	return func(opts *prepareOptions) {
		opts.implicitColumn = &selector
	}
}

// WithImplicit declares that an implicit value will be supplied to each
// evaluation through RunWithImplicit.
func WithImplicit() PrepareOption {
	return func(opts *prepareOptions) {
		opts.implicit = true
	}
}

// Prepare binds expr to header. Every column reference is resolved and
// every called function is checked for existence and arity. Any failure is
// returned as a *types.PrepareError.
func (e *Evaluator) Prepare(expr *types.Expression, header []string, opts ...PrepareOption) (*Program, error) {
	if e.err != nil {
		return nil, e.err
	}
	if expr == nil || expr.AST() == nil {
		return nil, fmt.Errorf("invalid expression")
	}

	var options prepareOptions
	for _, opt := range opts {
		opt(&options)
	}

	p := &Program{
		expr:           expr,
		header:         slices.Clone(header),
		implicit:       options.implicit,
		implicitColumn: -1,
	}

	if options.implicitColumn != nil {
		offset, err := p.resolve(*options.implicitColumn, -1)
		if err != nil {
			return nil, err
		}
		p.implicitColumn = offset
		p.implicit = true
	}

	pr := &preparer{evaluator: e, program: p}
	root, err := pr.prepare(expr.AST(), p.implicit)
	if err != nil {
		return nil, err
	}
	p.root = root

	slices.Sort(p.columns)
	p.columns = slices.Compact(p.columns)

	e.logger.Debug("expression prepared",
		"expr", expr.Source(),
		"columns", p.columns,
		"implicit_column", p.implicitColumn)

	return p, nil
}

// resolve finds the offset of a column and records it as referenced.
func (p *Program) resolve(selector types.ColumnIndexation, position int) (int, error) {
	offset, ok := selector.FindColumnIndex(p.header)
	if !ok {
		perr := &types.PrepareError{
			Code:     types.ErrUnknownColumn,
			Column:   selector.String(),
			Position: position,
		}
		if selector.Kind != types.SelectByPos {
			perr.Suggestion = findClosestMatch(selector.Name, p.header)
		}
		return 0, perr
	}
	p.columns = append(p.columns, offset)
	return offset, nil
}

type preparer struct {
	evaluator *Evaluator
	program   *Program
}

func (pr *preparer) prepare(node *types.ASTNode, hasImplicit bool) (*preparedNode, error) {
	switch node.Type {
	case types.NodeImplicit:
		if !hasImplicit {
			return nil, &types.PrepareError{Code: types.ErrNoImplicitValue, Position: node.Position}
		}
		return &preparedNode{kind: nodeImplicit, position: node.Position}, nil

	case types.NodeIdentifier:
		return pr.prepareIdentifier(node, hasImplicit)

	case types.NodeCall:
		return pr.prepareCall(node, hasImplicit)

	case types.NodePipeline:
		prepared := &preparedNode{kind: nodePipeline, position: node.Position}
		for i, stage := range node.Arguments {
			// every stage but the first receives the previous result
			stageNode, err := pr.prepare(stage, hasImplicit || i > 0)
			if err != nil {
				return nil, err
			}
			prepared.args = append(prepared.args, stageNode)
		}
		return prepared, nil

	default:
		value, ok := node.LiteralValue()
		if !ok {
			return nil, fmt.Errorf("unsupported node type %s", node.Type)
		}
		return &preparedNode{kind: nodeLiteral, position: node.Position, value: value}, nil
	}
}

// prepareIdentifier resolves a bare name: a header column first, then the
// implicit value for "_", then a function applied to the implicit value.
func (pr *preparer) prepareIdentifier(node *types.ASTNode, hasImplicit bool) (*preparedNode, error) {
	p := pr.program

	if offset, ok := types.ByName(node.Name).FindColumnIndex(p.header); ok {
		p.columns = append(p.columns, offset)
		return &preparedNode{kind: nodeColumn, position: node.Position, column: offset}, nil
	}

	if node.Name == "_" && hasImplicit {
		return &preparedNode{kind: nodeImplicit, position: node.Position}, nil
	}

	if fn, ok := pr.evaluator.Lookup(node.Name); ok && fn.Impl != nil {
		if !hasImplicit {
			return nil, &types.PrepareError{Code: types.ErrNoImplicitValue, Function: fn.Name, Position: node.Position}
		}
		if err := fn.Arity.Check(1); err != nil {
			return nil, &types.PrepareError{Code: types.ErrStaticArity, Function: fn.Name, Position: node.Position, Err: err}
		}
		return &preparedNode{
			kind:     nodeCall,
			position: node.Position,
			fn:       fn,
			args:     []*preparedNode{{kind: nodeImplicit, position: node.Position}},
		}, nil
	}

	_, err := p.resolve(types.ByName(node.Name), node.Position)
	return nil, err
}

func (pr *preparer) prepareCall(node *types.ASTNode, hasImplicit bool) (*preparedNode, error) {
	fn, ok := pr.evaluator.Lookup(node.Name)
	if !ok {
		return nil, &types.PrepareError{
			Code:       types.ErrUnknownFunction,
			Function:   node.Name,
			Suggestion: findClosestMatch(node.Name, pr.evaluator.functionNames()),
			Position:   node.Position,
		}
	}

	if err := fn.Arity.Check(len(node.Arguments)); err != nil {
		return nil, &types.PrepareError{Code: types.ErrStaticArity, Function: fn.Name, Position: node.Position, Err: err}
	}

	if fn.Name == colFunctionName {
		selector, ok := types.ColumnIndexationFromArguments(node.Arguments)
		if !ok {
			return nil, &types.PrepareError{Code: types.ErrInvalidSelector, Function: fn.Name, Position: node.Position}
		}
		offset, err := pr.program.resolve(selector, node.Position)
		if err != nil {
			return nil, err
		}
		return &preparedNode{kind: nodeColumn, position: node.Position, column: offset}, nil
	}

	prepared := &preparedNode{
		kind:     nodeCall,
		position: node.Position,
		fn:       fn,
		args:     make([]*preparedNode, 0, len(node.Arguments)),
	}
	for _, arg := range node.Arguments {
		argNode, err := pr.prepare(arg, hasImplicit)
		if err != nil {
			return nil, err
		}
		prepared.args = append(prepared.args, argNode)
	}
	return prepared, nil
}

// Expression returns the expression the program was prepared from.
func (p *Program) Expression() *types.Expression {
	return p.expr
}

// Header returns the header the program is bound to.
func (p *Program) Header() []string {
	return p.header
}

// Columns returns the sorted offsets of every referenced column.
func (p *Program) Columns() []int {
	return p.columns
}

// ImplicitColumn returns the offset of the column bound as implicit value,
// or -1.
func (p *Program) ImplicitColumn() int {
	return p.implicitColumn
}

func (p *Program) String() string {
	return p.expr.Source()
}

// Run evaluates the program against one row. When the program was prepared
// with an implicit column, its cell is bound as the implicit value.
func (p *Program) Run(ctx context.Context, row []string) (types.Value, error) {
	if err := ctx.Err(); err != nil {
		return types.None, err
	}

	rc := newRowContext(ctx, p, row)
	switch {
	case p.implicitColumn >= 0:
		rc.implicit = rc.cell(p.implicitColumn)
	case p.implicit:
		none := types.None
		rc.implicit = &none
	}

	return p.eval(rc, p.root)
}

// RunWithImplicit evaluates the program against one row with implicit as
// the value of "_".
func (p *Program) RunWithImplicit(ctx context.Context, row []string, implicit types.Value) (types.Value, error) {
	if err := ctx.Err(); err != nil {
		return types.None, err
	}

	rc := newRowContext(ctx, p, row)
	rc.implicit = &implicit

	return p.eval(rc, p.root)
}

// eval walks the prepared tree post-order, left to right. The first error
// aborts the walk.
func (p *Program) eval(rc *rowContext, n *preparedNode) (types.Value, error) {
	switch n.kind {
	case nodeLiteral:
		return n.value, nil
	case nodeColumn:
		return rc.cells[n.column], nil
	case nodeImplicit:
		return *rc.implicit, nil
	case nodePipeline:
		return p.evalPipeline(rc, n)
	default:
		return p.call(rc, n)
	}
}

func (p *Program) evalPipeline(rc *rowContext, n *preparedNode) (types.Value, error) {
	value, err := p.eval(rc, n.args[0])
	if err != nil {
		return types.None, err
	}

	for _, stage := range n.args[1:] {
		previous := value
		restore := rc.withImplicit(&previous)
		value, err = p.eval(rc, stage)
		restore()
		if err != nil {
			return types.None, err
		}
	}

	return value, nil
}

// call binds the arguments of n and invokes its function. Cells and the
// implicit value are borrowed, everything else is computed and owned.
func (p *Program) call(rc *rowContext, n *preparedNode) (types.Value, error) {
	args := acquireArgs()
	defer releaseArgs(args)

	for _, arg := range n.args {
		switch arg.kind {
		case nodeColumn:
			args.PushBorrowed(rc.cell(arg.column))
		case nodeImplicit:
			args.PushBorrowed(rc.implicit)
		default:
			value, err := p.eval(rc, arg)
			if err != nil {
				return types.None, err
			}
			args.Push(value)
		}
	}

	value, err := n.fn.Impl(rc.ctx, args)
	if err != nil {
		return types.None, &types.EvaluationError{Function: n.fn.Name, Err: err}
	}
	return value, nil
}

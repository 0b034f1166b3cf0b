package evaluator

import (
	"context"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// rowContext holds the state of a single row evaluation. It is owned by the
// goroutine evaluating the row and discarded afterwards.
type rowContext struct {
	ctx context.Context

	// cells holds the row values of the referenced columns, indexed by
	// column offset. Unreferenced offsets stay None.
	cells []types.Value

	// implicit is the value "_" refers to: the target column value or the
	// result of the previous pipeline stage. nil when none is bound.
	implicit *types.Value
}

func newRowContext(ctx context.Context, p *Program, row []string) *rowContext {
	rc := &rowContext{
		ctx:   ctx,
		cells: make([]types.Value, len(p.header)),
	}

	for _, offset := range p.columns {
		if offset < len(row) {
			rc.cells[offset] = types.NewString(row[offset])
		}
	}

	return rc
}

// cell returns a reference to the bound value of a column.
func (rc *rowContext) cell(offset int) *types.Value {
	return &rc.cells[offset]
}

// withImplicit binds v as the implicit value and returns a function
// restoring the previous binding.
func (rc *rowContext) withImplicit(v *types.Value) func() {
	previous := rc.implicit
	rc.implicit = v
	return func() {
		rc.implicit = previous
	}
}

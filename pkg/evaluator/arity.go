package evaluator

import (
	"fmt"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Arity is the argument count contract of a function: an exact count, a
// minimum count or an inclusive range.
type Arity struct {
	Kind types.ArityKind
	Min  int
	Max  int // -1 when unbounded
}

// Strict returns an arity requiring exactly n arguments.
func Strict(n int) Arity {
	return Arity{Kind: types.ArityStrict, Min: n, Max: n}
}

// Min returns an arity requiring at least n arguments.
func Min(n int) Arity {
	return Arity{Kind: types.ArityMin, Min: n, Max: -1}
}

// Range returns an arity requiring between min and max arguments, inclusive.
func Range(min, max int) Arity {
	return Arity{Kind: types.ArityRange, Min: min, Max: max}
}

// Check returns an *types.ArityError when got does not satisfy the contract.
func (a Arity) Check(got int) error {
	switch a.Kind {
	case types.ArityMin:
		if got < a.Min {
			return types.NewMinArityError(a.Min, got)
		}
	case types.ArityRange:
		if got < a.Min || got > a.Max {
			return types.NewRangeArityError(a.Min, a.Max, got)
		}
	default:
		if got != a.Min {
			return types.NewArityError(a.Min, got)
		}
	}
	return nil
}

// Accepts reports whether got arguments satisfy the contract.
func (a Arity) Accepts(got int) bool {
	return a.Check(got) == nil
}

func (a Arity) String() string {
	switch a.Kind {
	case types.ArityMin:
		return fmt.Sprintf("%d+", a.Min)
	case types.ArityRange:
		return fmt.Sprintf("%d-%d", a.Min, a.Max)
	default:
		return fmt.Sprintf("%d", a.Min)
	}
}

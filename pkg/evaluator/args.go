package evaluator

import (
	"iter"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// BoundArgument is a single evaluated argument of a call. It either owns a
// freshly computed value or borrows a value bound for the current row (a
// cell, the implicit value or a previous pipeline stage). A borrowed argument
// must not be retained once the call returns.
type BoundArgument struct {
	owned types.Value
	ref   *types.Value
}

// Owned wraps a freshly computed value.
func Owned(v types.Value) BoundArgument {
	return BoundArgument{owned: v}
}

// Borrowed wraps a reference to a value bound for the current row.
func Borrowed(v *types.Value) BoundArgument {
	return BoundArgument{ref: v}
}

// IsBorrowed reports whether the argument refers to row-bound data.
func (a BoundArgument) IsBorrowed() bool {
	return a.ref != nil
}

// Value returns the argument value.
func (a BoundArgument) Value() types.Value {
	if a.ref != nil {
		return *a.ref
	}
	return a.owned
}

func (a *BoundArgument) ptr() *types.Value {
	if a.ref != nil {
		return a.ref
	}
	return &a.owned
}

// BoundArguments is the ordered stack of arguments of a single function
// call. It is built right before the call and discarded right after.
//
// Functions must validate arity before reading arguments. The fixed-arity
// accessors (Get1, Pop1, Get2Str...) do it themselves and fail with an
// *types.ArityError; typed accessors may also fail with a *types.CastError.
type BoundArguments struct {
	stack []BoundArgument
}

// NewBoundArguments returns an empty argument stack with room for capacity
// arguments.
func NewBoundArguments(capacity int) *BoundArguments {
	return &BoundArguments{stack: make([]BoundArgument, 0, capacity)}
}

// NewBoundArgumentsFrom returns a stack owning a copy of values.
func NewBoundArgumentsFrom(values ...types.Value) *BoundArguments {
	args := NewBoundArguments(len(values))
	for _, v := range values {
		args.Push(v)
	}
	return args
}

// Push appends an owned value.
func (b *BoundArguments) Push(v types.Value) {
	b.stack = append(b.stack, Owned(v))
}

// PushBorrowed appends a borrowed value.
func (b *BoundArguments) PushBorrowed(v *types.Value) {
	b.stack = append(b.stack, Borrowed(v))
}

// Len returns the number of bound arguments.
func (b *BoundArguments) Len() int {
	return len(b.stack)
}

// IsEmpty reports whether no argument is bound.
func (b *BoundArguments) IsEmpty() bool {
	return len(b.stack) == 0
}

func (b *BoundArguments) reset() {
	clear(b.stack)
	b.stack = b.stack[:0]
}

// ValidateArity fails unless exactly n arguments are bound.
func (b *BoundArguments) ValidateArity(n int) error {
	if len(b.stack) != n {
		return types.NewArityError(n, len(b.stack))
	}
	return nil
}

// ValidateMinArity fails unless at least n arguments are bound.
func (b *BoundArguments) ValidateMinArity(n int) error {
	if len(b.stack) < n {
		return types.NewMinArityError(n, len(b.stack))
	}
	return nil
}

// ValidateMinMaxArity fails unless between min and max arguments are bound.
func (b *BoundArguments) ValidateMinMaxArity(min, max int) error {
	n := len(b.stack)
	if n < min || n > max {
		return types.NewRangeArityError(min, max, n)
	}
	return nil
}

// Get returns the argument at index i.
func (b *BoundArguments) Get(i int) (types.Value, bool) {
	if i < 0 || i >= len(b.stack) {
		return types.None, false
	}
	return b.stack[i].Value(), true
}

// GetN returns exactly n slots. Missing arguments are nil. It never fails,
// which makes it suitable for optional trailing arguments once arity has
// been validated.
func (b *BoundArguments) GetN(n int) []*types.Value {
	slots := make([]*types.Value, n)
	for i := 0; i < n && i < len(b.stack); i++ {
		slots[i] = b.stack[i].ptr()
	}
	return slots
}

// Get1 returns the single argument.
func (b *BoundArguments) Get1() (types.Value, error) {
	if err := b.ValidateArity(1); err != nil {
		return types.None, err
	}
	return b.stack[0].Value(), nil
}

// Get2 returns both arguments of a binary call.
func (b *BoundArguments) Get2() (types.Value, types.Value, error) {
	if err := b.ValidateArity(2); err != nil {
		return types.None, types.None, err
	}
	return b.stack[0].Value(), b.stack[1].Value(), nil
}

// Get3 returns the three arguments of a ternary call.
func (b *BoundArguments) Get3() (types.Value, types.Value, types.Value, error) {
	if err := b.ValidateArity(3); err != nil {
		return types.None, types.None, types.None, err
	}
	return b.stack[0].Value(), b.stack[1].Value(), b.stack[2].Value(), nil
}

// Pop1 removes and returns the single argument.
func (b *BoundArguments) Pop1() (types.Value, error) {
	if err := b.ValidateArity(1); err != nil {
		return types.None, err
	}
	v := b.stack[0].Value()
	b.reset()
	return v, nil
}

// Pop1Bool removes the single argument and returns its truthiness.
func (b *BoundArguments) Pop1Bool() (bool, error) {
	v, err := b.Pop1()
	if err != nil {
		return false, err
	}
	return v.IsTruthy(), nil
}

// Pop1Number removes the single argument and converts it to a number.
func (b *BoundArguments) Pop1Number() (types.Number, error) {
	v, err := b.Pop1()
	if err != nil {
		return types.Number{}, err
	}
	return v.AsNumber()
}

// Pop1List removes the single argument and returns its items.
func (b *BoundArguments) Pop1List() ([]types.Value, error) {
	v, err := b.Pop1()
	if err != nil {
		return nil, err
	}
	return v.AsList()
}

// Get1Str returns the single argument as a string.
func (b *BoundArguments) Get1Str() (string, error) {
	v, err := b.Get1()
	if err != nil {
		return "", err
	}
	return v.AsString()
}

// Get2Str returns both arguments as strings.
func (b *BoundArguments) Get2Str() (string, string, error) {
	a, c, err := b.Get2()
	if err != nil {
		return "", "", err
	}
	s1, err := a.AsString()
	if err != nil {
		return "", "", err
	}
	s2, err := c.AsString()
	if err != nil {
		return "", "", err
	}
	return s1, s2, nil
}

// Get2Number returns both arguments as numbers.
func (b *BoundArguments) Get2Number() (types.Number, types.Number, error) {
	a, c, err := b.Get2()
	if err != nil {
		return types.Number{}, types.Number{}, err
	}
	n1, err := a.AsNumber()
	if err != nil {
		return types.Number{}, types.Number{}, err
	}
	n2, err := c.AsNumber()
	if err != nil {
		return types.Number{}, types.Number{}, err
	}
	return n1, n2, nil
}

// Get2Bool returns the truthiness of both arguments.
func (b *BoundArguments) Get2Bool() (bool, bool, error) {
	a, c, err := b.Get2()
	if err != nil {
		return false, false, err
	}
	return a.IsTruthy(), c.IsTruthy(), nil
}

// All iterates over the bound values in order.
func (b *BoundArguments) All() iter.Seq2[int, types.Value] {
	return func(yield func(int, types.Value) bool) {
		for i := range b.stack {
			if !yield(i, b.stack[i].Value()) {
				return
			}
		}
	}
}

// Values copies the bound values into a new slice.
func (b *BoundArguments) Values() []types.Value {
	values := make([]types.Value, len(b.stack))
	for i := range b.stack {
		values[i] = b.stack[i].Value()
	}
	return values
}

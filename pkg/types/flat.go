package types

import "iter"

// FlatIter walks the non-list leaves of a value depth-first, left to right.
// A scalar yields itself once. Creating a new FlatIter over the same value
// yields the same sequence again.
type FlatIter struct {
	stack []Value
}

// NewFlatIter returns an iterator positioned before the first leaf of v.
func NewFlatIter(v Value) *FlatIter {
	capacity := 1
	if v.kind == KindList {
		capacity = len(v.list)
	}
	stack := make([]Value, 0, capacity)
	return &FlatIter{stack: append(stack, v)}
}

// Next returns the next leaf, or false when the iterator is exhausted.
func (it *FlatIter) Next() (Value, bool) {
	for len(it.stack) > 0 {
		last := len(it.stack) - 1
		v := it.stack[last]
		it.stack = it.stack[:last]

		if v.kind != KindList {
			return v, true
		}

		// push in reverse so the first item is popped first
		for i := len(v.list) - 1; i >= 0; i-- {
			it.stack = append(it.stack, v.list[i])
		}
	}
	return None, false
}

// Flat returns a lazy sequence over the leaves of v. See FlatIter.
func (v Value) Flat() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		it := NewFlatIter(v)
		for {
			leaf, ok := it.Next()
			if !ok || !yield(leaf) {
				return
			}
		}
	}
}

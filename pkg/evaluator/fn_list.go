package evaluator

import (
	"context"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// --- List Functions ---

// sequence gives uniform index access to lists and to the characters of
// strings.
type sequence struct {
	items []types.Value
	runes []rune
	list  bool
}

func asSequence(v types.Value) (sequence, error) {
	if v.Kind() == types.KindList {
		items, _ := v.AsList()
		return sequence{items: items, list: true}, nil
	}
	s, err := v.AsString()
	if err != nil {
		return sequence{}, err
	}
	return sequence{runes: []rune(s)}, nil
}

func (s sequence) len() int {
	if s.list {
		return len(s.items)
	}
	return len(s.runes)
}

func (s sequence) at(i int) types.Value {
	if s.list {
		return s.items[i]
	}
	return types.NewString(string(s.runes[i]))
}

func (s sequence) slice(start, end int) types.Value {
	if s.list {
		return types.NewList(s.items[start:end:end])
	}
	return types.NewString(string(s.runes[start:end]))
}

// normalizeIndex maps negative indices from the end. The result may still
// be out of bounds.
func normalizeIndex(i int64, length int) int64 {
	if i < 0 {
		return int64(length) + i
	}
	return i
}

func clampIndex(i int64, length int) int {
	i = normalizeIndex(i, length)
	switch {
	case i < 0:
		return 0
	case i > int64(length):
		return length
	default:
		return int(i)
	}
}

func fnFirst(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}
	seq, err := asSequence(v)
	if err != nil {
		return types.None, err
	}
	if seq.len() == 0 {
		return types.None, nil
	}
	return seq.at(0), nil
}

func fnLast(_ context.Context, args *BoundArguments) (types.Value, error) {
	v, err := args.Pop1()
	if err != nil {
		return types.None, err
	}
	seq, err := asSequence(v)
	if err != nil {
		return types.None, err
	}
	if seq.len() == 0 {
		return types.None, nil
	}
	return seq.at(seq.len() - 1), nil
}

func fnGet(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinMaxArity(2, 3); err != nil {
		return types.None, err
	}

	slots := args.GetN(3)
	fallback := types.None
	if slots[2] != nil {
		fallback = *slots[2]
	}

	seq, err := asSequence(*slots[0])
	if err != nil {
		return types.None, err
	}
	index, err := slots[1].AsInteger()
	if err != nil {
		return types.None, err
	}

	i := normalizeIndex(index, seq.len())
	if i < 0 || i >= int64(seq.len()) {
		return fallback, nil
	}
	return seq.at(int(i)), nil
}

func fnSlice(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinMaxArity(2, 3); err != nil {
		return types.None, err
	}

	slots := args.GetN(3)
	seq, err := asSequence(*slots[0])
	if err != nil {
		return types.None, err
	}

	startIndex, err := slots[1].AsInteger()
	if err != nil {
		return types.None, err
	}
	start := clampIndex(startIndex, seq.len())

	end := seq.len()
	if slots[2] != nil {
		endIndex, err := slots[2].AsInteger()
		if err != nil {
			return types.None, err
		}
		end = clampIndex(endIndex, seq.len())
	}

	if end < start {
		end = start
	}
	return seq.slice(start, end), nil
}

func fnCompact(_ context.Context, args *BoundArguments) (types.Value, error) {
	items, err := args.Pop1List()
	if err != nil {
		return types.None, err
	}

	kept := make([]types.Value, 0, len(items))
	for _, item := range items {
		if !isEmpty(item) {
			kept = append(kept, item)
		}
	}
	return types.NewList(kept), nil
}

func fnFlatten(_ context.Context, args *BoundArguments) (types.Value, error) {
	if err := args.ValidateMinArity(1); err != nil {
		return types.None, err
	}

	var leaves []types.Value
	for _, v := range args.All() {
		for leaf := range v.Flat() {
			leaves = append(leaves, leaf)
		}
	}
	return types.NewList(leaves), nil
}

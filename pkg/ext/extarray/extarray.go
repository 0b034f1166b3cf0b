// Package extarray provides extended list functions for xan expressions:
// slicing helpers, set operations, ranges and sliding windows.
//
// Set operations compare items with Value.Equal, so the string "1" and the
// integer 1 are distinct items.
package extarray

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/A-Archives-and-Forks/xan/pkg/ext/extutil"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// maxRangeItems bounds the lists built by range.
const maxRangeItems = 100000

// All returns all extended list function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		Take(),
		Skip(),
		Chunk(),
		Window(),
		Reverse(),
		Sort(),
		Uniq(),
		Union(),
		Intersection(),
		Difference(),
		SymmetricDifference(),
		Range(),
		ZipLongest(),
	}
}

// Take returns the definition for take(list, n).
func Take() functions.CustomFunctionDef {
	return listAndCount("take", "Return the first n items of list.", func(items []types.Value, n int) types.Value {
		return types.NewList(items[:min(n, len(items))])
	})
}

// Skip returns the definition for skip(list, n).
func Skip() functions.CustomFunctionDef {
	return listAndCount("skip", "Return list without its first n items.", func(items []types.Value, n int) types.Value {
		return types.NewList(items[min(n, len(items)):])
	})
}

// Chunk returns the definition for chunk(list, size).
func Chunk() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "chunk",
		MinArgs:     2,
		MaxArgs:     2,
		Help:        "chunk(list, size) -> list",
		Description: "Split list into consecutive sublists of at most size items.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			items, err := extutil.List(args, 0)
			if err != nil {
				return types.None, err
			}
			size, err := extutil.Uint(args, 1)
			if err != nil {
				return types.None, err
			}
			if size == 0 {
				return types.None, errors.New("size must be a positive integer")
			}

			chunks := make([]types.Value, 0, (len(items)+size-1)/size)
			for chunk := range slices.Chunk(items, size) {
				chunks = append(chunks, types.NewList(chunk))
			}
			return types.NewList(chunks), nil
		},
	}
}

// Window returns the definition for window(list, size, step?).
func Window() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "window",
		MinArgs:     2,
		MaxArgs:     3,
		Help:        "window(list, size, step?) -> list",
		Description: "Return the sliding windows of size items over list, advancing by step.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			items, err := extutil.List(args, 0)
			if err != nil {
				return types.None, err
			}
			size, err := extutil.Uint(args, 1)
			if err != nil {
				return types.None, err
			}
			step := 1
			if extutil.Optional(args, 2) {
				if step, err = extutil.Uint(args, 2); err != nil {
					return types.None, err
				}
			}
			if size == 0 || step == 0 {
				return types.None, errors.New("size and step must be positive")
			}

			var windows []types.Value
			for i := 0; i+size <= len(items); i += step {
				windows = append(windows, types.NewList(items[i:i+size]))
			}
			return types.NewList(windows), nil
		},
	}
}

// Reverse returns the definition for reverse(list).
func Reverse() functions.CustomFunctionDef {
	return listOnly("reverse", "Return list in reverse order.", func(items []types.Value) types.Value {
		reversed := slices.Clone(items)
		slices.Reverse(reversed)
		return types.NewList(reversed)
	})
}

// Sort returns the definition for sort(list). Numbers sort numerically
// before any other item, which sort by their string form.
func Sort() functions.CustomFunctionDef {
	return listOnly("sort", "Return list sorted, numbers first.", func(items []types.Value) types.Value {
		sorted := slices.Clone(items)
		slices.SortStableFunc(sorted, compareItems)
		return types.NewList(sorted)
	})
}

func compareItems(a, b types.Value) int {
	na, errA := a.AsNumber()
	nb, errB := b.AsNumber()
	switch {
	case errA == nil && errB == nil:
		c, _ := na.Compare(nb)
		return c
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a.String(), b.String())
	}
}

// Uniq returns the definition for uniq(list), keeping first occurrences.
func Uniq() functions.CustomFunctionDef {
	return listOnly("uniq", "Remove duplicate items from list.", func(items []types.Value) types.Value {
		return types.NewList(dedupe(items, nil))
	})
}

// Union returns the definition for union(list1, list2).
func Union() functions.CustomFunctionDef {
	return setOp("union", "Return the deduplicated items of both lists.", func(a, b []types.Value) []types.Value {
		return dedupe(slices.Concat(a, b), nil)
	})
}

// Intersection returns the definition for intersection(list1, list2).
func Intersection() functions.CustomFunctionDef {
	return setOp("intersection", "Return the items of list1 also found in list2.", func(a, b []types.Value) []types.Value {
		in := keySet(b)
		return dedupe(a, func(key string) bool { return in[key] })
	})
}

// Difference returns the definition for difference(list1, list2).
func Difference() functions.CustomFunctionDef {
	return setOp("difference", "Return the items of list1 not found in list2.", func(a, b []types.Value) []types.Value {
		in := keySet(b)
		return dedupe(a, func(key string) bool { return !in[key] })
	})
}

// SymmetricDifference returns the definition for sym_diff(list1, list2).
func SymmetricDifference() functions.CustomFunctionDef {
	return setOp("sym_diff", "Return the items found in exactly one of the lists.", func(a, b []types.Value) []types.Value {
		inA, inB := keySet(a), keySet(b)
		return dedupe(slices.Concat(a, b), func(key string) bool { return inA[key] != inB[key] })
	})
}

// Range returns the definition for range(start, end, step?). end is
// inclusive. Integer bounds and step produce integers.
func Range() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "range",
		MinArgs:     2,
		MaxArgs:     3,
		Help:        "range(start, end, step?) -> list",
		Description: "Return the numbers from start to end included, by step.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			start, err := extutil.Number(args, 0)
			if err != nil {
				return types.None, err
			}
			end, err := extutil.Number(args, 1)
			if err != nil {
				return types.None, err
			}
			step := types.IntegerNumber(1)
			if extutil.Optional(args, 2) {
				if step, err = extutil.Number(args, 2); err != nil {
					return types.None, err
				}
			}
			if step.Float64() == 0 || math.IsNaN(step.Float64()) {
				return types.None, errors.New("step must not be zero")
			}

			ascending := step.Float64() > 0
			var items []types.Value
			for v := start; ; v = v.Add(step) {
				if ascending && end.Less(v) || !ascending && v.Less(end) {
					break
				}
				if len(items) >= maxRangeItems {
					return types.None, fmt.Errorf("would produce more than %d items", maxRangeItems)
				}
				items = append(items, v.Value())
			}
			return types.NewList(items), nil
		},
	}
}

// ZipLongest returns the definition for zip_longest(list1, list2, fill?).
func ZipLongest() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "zip_longest",
		MinArgs:     2,
		MaxArgs:     3,
		Help:        "zip_longest(list1, list2, fill?) -> list",
		Description: "Pair the items of both lists, padding the shorter one with fill.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			a, err := extutil.List(args, 0)
			if err != nil {
				return types.None, err
			}
			b, err := extutil.List(args, 1)
			if err != nil {
				return types.None, err
			}
			fill := types.None
			if len(args) > 2 {
				fill = args[2]
			}

			pairs := make([]types.Value, max(len(a), len(b)))
			for i := range pairs {
				left, right := fill, fill
				if i < len(a) {
					left = a[i]
				}
				if i < len(b) {
					right = b[i]
				}
				pairs[i] = types.NewList([]types.Value{left, right})
			}
			return types.NewList(pairs), nil
		},
	}
}

// ── helpers ────────────────────────────────────────────────────────────────

func listOnly(name, description string, fn func([]types.Value) types.Value) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     1,
		MaxArgs:     1,
		Help:        name + "(list) -> list",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			items, err := extutil.List(args, 0)
			if err != nil {
				return types.None, err
			}
			return fn(items), nil
		},
	}
}

func listAndCount(name, description string, fn func([]types.Value, int) types.Value) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     2,
		MaxArgs:     2,
		Help:        name + "(list, n) -> list",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			items, err := extutil.List(args, 0)
			if err != nil {
				return types.None, err
			}
			n, err := extutil.Uint(args, 1)
			if err != nil {
				return types.None, err
			}
			return fn(items, n), nil
		},
	}
}

func setOp(name, description string, fn func(a, b []types.Value) []types.Value) functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        name,
		MinArgs:     2,
		MaxArgs:     2,
		Help:        name + "(list1, list2) -> list",
		Description: description,
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			a, err := extutil.List(args, 0)
			if err != nil {
				return types.None, err
			}
			b, err := extutil.List(args, 1)
			if err != nil {
				return types.None, err
			}
			return types.NewList(fn(a, b)), nil
		},
	}
}

// itemKey is consistent with Value.Equal for scalar items.
func itemKey(v types.Value) string {
	return v.TypeOf() + "\x00" + v.String()
}

func keySet(items []types.Value) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[itemKey(item)] = true
	}
	return set
}

// dedupe keeps the first occurrence of every item accepted by keep. A nil
// keep accepts everything.
func dedupe(items []types.Value, keep func(key string) bool) []types.Value {
	seen := make(map[string]bool, len(items))
	out := make([]types.Value, 0, len(items))
	for _, item := range items {
		key := itemKey(item)
		if seen[key] || (keep != nil && !keep(key)) {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

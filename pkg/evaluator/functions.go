package evaluator

import (
	"context"
	"slices"
	"sync"

	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// FunctionImpl is the implementation of a function. Arguments are evaluated
// before the call and only reachable through args.
type FunctionImpl func(ctx context.Context, args *BoundArguments) (types.Value, error)

// FunctionDef defines a function available to expressions.
type FunctionDef struct {
	Name     string
	Arity    Arity
	Impl     FunctionImpl
	Category string
	// Help is the usage line, e.g. "add(x, y, *n) -> number".
	Help string
	// Description is a one sentence explanation shown by the functions listing.
	Description string
}

// Function categories, in the order they are listed.
const (
	CategoryArithmetic = "arithmetic"
	CategoryLogic      = "boolean operations & branching"
	CategoryComparison = "comparison"
	CategoryStrings    = "strings"
	CategoryLists      = "lists"
	CategoryUtilities  = "utilities"
	CategoryExtensions = "extensions"
)

// Categories lists the function categories in display order.
var Categories = []string{
	CategoryArithmetic,
	CategoryLogic,
	CategoryComparison,
	CategoryStrings,
	CategoryLists,
	CategoryUtilities,
	CategoryExtensions,
}

// colFunctionName is the column selector special form. It is rewritten into
// a column reference at prepare time and never called.
const colFunctionName = "col"

var (
	builtinFunctions     map[string]*FunctionDef
	builtinFunctionsOnce sync.Once
)

func def(category, name string, arity Arity, impl FunctionImpl, help, description string) *FunctionDef {
	return &FunctionDef{
		Name:        name,
		Arity:       arity,
		Impl:        impl,
		Category:    category,
		Help:        help,
		Description: description,
	}
}

// initBuiltinFunctions initializes the built-in function registry.
func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		defs := []*FunctionDef{
			// Arithmetic
			def(CategoryArithmetic, "add", Min(2), fnAdd, "add(x, y, *n) -> number", "Add two or more numbers."),
			def(CategoryArithmetic, "sub", Strict(2), fnSub, "sub(x, y) -> number", "Subtract y from x."),
			def(CategoryArithmetic, "mul", Min(2), fnMul, "mul(x, y, *n) -> number", "Multiply two or more numbers."),
			def(CategoryArithmetic, "div", Strict(2), fnDiv, "div(x, y) -> float", "Divide x by y."),
			def(CategoryArithmetic, "idiv", Strict(2), fnIDiv, "idiv(x, y) -> integer", "Integer division, flooring the true quotient."),
			def(CategoryArithmetic, "mod", Strict(2), fnMod, "mod(x, y) -> number", "Remainder of x divided by y."),
			def(CategoryArithmetic, "pow", Strict(2), fnPow, "pow(x, y) -> number", "Raise x to the power y."),
			def(CategoryArithmetic, "neg", Strict(1), fnNeg, "neg(x) -> number", "Negate x."),
			def(CategoryArithmetic, "abs", Strict(1), fnAbs, "abs(x) -> number", "Absolute value of x."),
			def(CategoryArithmetic, "inc", Strict(1), fnInc, "inc(x) -> number", "Increment x by one."),
			def(CategoryArithmetic, "dec", Strict(1), fnDec, "dec(x) -> number", "Decrement x by one."),
			def(CategoryArithmetic, "floor", Strict(1), fnFloor, "floor(x) -> number", "Round x down."),
			def(CategoryArithmetic, "ceil", Strict(1), fnCeil, "ceil(x) -> number", "Round x up."),
			def(CategoryArithmetic, "round", Strict(1), fnRound, "round(x) -> number", "Round x to the nearest integer, halves away from zero."),
			def(CategoryArithmetic, "trunc", Strict(1), fnTrunc, "trunc(x) -> number", "Drop the fractional part of x."),
			def(CategoryArithmetic, "sqrt", Strict(1), fnSqrt, "sqrt(x) -> float", "Square root of x."),
			def(CategoryArithmetic, "log", Range(1, 2), fnLog, "log(x, base?) -> float", "Natural logarithm of x, or logarithm in the given base."),
			def(CategoryArithmetic, "min", Min(1), fnMin, "min(x, *n) -> number", "Smallest number among all arguments, lists being flattened."),
			def(CategoryArithmetic, "max", Min(1), fnMax, "max(x, *n) -> number", "Largest number among all arguments, lists being flattened."),
			def(CategoryArithmetic, "sum", Min(1), fnSum, "sum(x, *n) -> number", "Sum of all arguments, lists being flattened."),

			// Boolean operations & branching
			def(CategoryLogic, "and", Min(2), fnAnd, "and(a, b, *n) -> T", "First falsey argument, or the last one."),
			def(CategoryLogic, "or", Min(2), fnOr, "or(a, b, *n) -> T", "First truthy argument, or the last one."),
			def(CategoryLogic, "not", Strict(1), fnNot, "not(a) -> bool", "Boolean negation of a."),
			def(CategoryLogic, "if", Range(2, 3), fnIf, "if(cond, then, else?) -> T", "Return then if cond is truthy, else otherwise."),
			def(CategoryLogic, "unless", Range(2, 3), fnUnless, "unless(cond, then, else?) -> T", "Return then if cond is falsey, else otherwise."),
			def(CategoryLogic, "coalesce", Min(1), fnCoalesce, "coalesce(*args) -> T", "First argument that is neither empty nor none."),

			// Comparison
			def(CategoryComparison, "eq", Strict(2), fnEq, "eq(x, y) -> bool", "Numeric equality."),
			def(CategoryComparison, "ne", Strict(2), fnNe, "ne(x, y) -> bool", "Numeric inequality."),
			def(CategoryComparison, "gt", Strict(2), fnGt, "gt(x, y) -> bool", "Numeric x > y."),
			def(CategoryComparison, "ge", Strict(2), fnGe, "ge(x, y) -> bool", "Numeric x >= y."),
			def(CategoryComparison, "lt", Strict(2), fnLt, "lt(x, y) -> bool", "Numeric x < y."),
			def(CategoryComparison, "le", Strict(2), fnLe, "le(x, y) -> bool", "Numeric x <= y."),
			def(CategoryComparison, "s_eq", Strict(2), fnStrEq, "s_eq(s1, s2) -> bool", "String equality."),
			def(CategoryComparison, "s_ne", Strict(2), fnStrNe, "s_ne(s1, s2) -> bool", "String inequality."),
			def(CategoryComparison, "s_gt", Strict(2), fnStrGt, "s_gt(s1, s2) -> bool", "Lexicographic s1 > s2."),
			def(CategoryComparison, "s_ge", Strict(2), fnStrGe, "s_ge(s1, s2) -> bool", "Lexicographic s1 >= s2."),
			def(CategoryComparison, "s_lt", Strict(2), fnStrLt, "s_lt(s1, s2) -> bool", "Lexicographic s1 < s2."),
			def(CategoryComparison, "s_le", Strict(2), fnStrLe, "s_le(s1, s2) -> bool", "Lexicographic s1 <= s2."),

			// Strings
			def(CategoryStrings, "len", Strict(1), fnLen, "len(x) -> integer", "Number of characters of a string, or items of a list."),
			def(CategoryStrings, "upper", Strict(1), fnUpper, "upper(s) -> string", "Uppercase s."),
			def(CategoryStrings, "lower", Strict(1), fnLower, "lower(s) -> string", "Lowercase s."),
			def(CategoryStrings, "trim", Range(1, 2), fnTrim, "trim(s, chars?) -> string", "Strip whitespace, or the given characters, on both sides."),
			def(CategoryStrings, "ltrim", Range(1, 2), fnLTrim, "ltrim(s, chars?) -> string", "Strip whitespace, or the given characters, on the left."),
			def(CategoryStrings, "rtrim", Range(1, 2), fnRTrim, "rtrim(s, chars?) -> string", "Strip whitespace, or the given characters, on the right."),
			def(CategoryStrings, "split", Range(2, 3), fnSplit, "split(s, sep, max?) -> list[string]", "Split s by a string or regex separator."),
			def(CategoryStrings, "join", Strict(2), fnJoin, "join(list, sep) -> string", "Join the items of a list."),
			def(CategoryStrings, "concat", Min(1), fnConcat, "concat(x, *n) -> T", "Concatenate strings, or lists when x is a list."),
			def(CategoryStrings, "contains", Strict(2), fnContains, "contains(x, pattern) -> bool", "Whether a string contains a substring or regex match, or a list an equal item."),
			def(CategoryStrings, "startswith", Strict(2), fnStartsWith, "startswith(s, prefix) -> bool", "Whether s starts with prefix."),
			def(CategoryStrings, "endswith", Strict(2), fnEndsWith, "endswith(s, suffix) -> bool", "Whether s ends with suffix."),
			def(CategoryStrings, "replace", Strict(3), fnReplace, "replace(s, pattern, replacement) -> string", "Replace every occurrence of a substring or regex."),
			def(CategoryStrings, "count", Strict(2), fnCount, "count(s, pattern) -> integer", "Number of non overlapping occurrences of a substring or regex."),
			def(CategoryStrings, "escape_regex", Strict(1), fnEscapeRegex, "escape_regex(s) -> string", "Escape regex metacharacters of s."),
			def(CategoryStrings, "fmt", Min(1), fnFmt, "fmt(template, *args) -> string", "Replace each {} of template by the next argument."),

			// Lists
			def(CategoryLists, "first", Strict(1), fnFirst, "first(x) -> T", "First item of a list, or first character of a string."),
			def(CategoryLists, "last", Strict(1), fnLast, "last(x) -> T", "Last item of a list, or last character of a string."),
			def(CategoryLists, "get", Range(2, 3), fnGet, "get(x, index, default?) -> T", "Item at index, negative indices counting from the end."),
			def(CategoryLists, "slice", Range(2, 3), fnSlice, "slice(x, start, end?) -> T", "Sub list or substring, negative indices counting from the end."),
			def(CategoryLists, "compact", Strict(1), fnCompact, "compact(list) -> list", "Drop empty and none items."),
			def(CategoryLists, "flatten", Min(1), fnFlatten, "flatten(*args) -> list", "All scalars reachable from the arguments, depth first."),

			// Utilities
			def(CategoryUtilities, "typeof", Strict(1), fnTypeOf, "typeof(x) -> string", "Type name of x."),
			def(CategoryUtilities, "val", Strict(1), fnVal, "val(x) -> T", "Return x unchanged."),
			def(CategoryUtilities, "isnull", Strict(1), fnIsNull, "isnull(x) -> bool", "Whether x is none or empty."),
			def(CategoryUtilities, "isfloat", Strict(1), fnIsFloat, "isfloat(x) -> bool", "Whether x is, or parses as, a float."),
			def(CategoryUtilities, "isint", Strict(1), fnIsInt, "isint(x) -> bool", "Whether x is, or parses as, an integer."),
			def(CategoryUtilities, "pathjoin", Min(1), fnPathJoin, "pathjoin(*parts) -> string", "Join path segments."),
			def(CategoryUtilities, colFunctionName, Range(1, 2), nil, `col(name_or_pos, nth?) -> T`, "Value of a column selected by name, name and occurrence, or position."),
		}

		builtinFunctions = make(map[string]*FunctionDef, len(defs))
		for _, fd := range defs {
			builtinFunctions[fd.Name] = fd
		}
	})
}

// GetFunction retrieves a built-in function by name.
func GetFunction(name string) (*FunctionDef, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// BuiltinFunctions returns every built-in function sorted by category then name.
func BuiltinFunctions() []*FunctionDef {
	initBuiltinFunctions()
	defs := make([]*FunctionDef, 0, len(builtinFunctions))
	for _, fd := range builtinFunctions {
		defs = append(defs, fd)
	}
	sortFunctionDefs(defs)
	return defs
}

func sortFunctionDefs(defs []*FunctionDef) {
	slices.SortFunc(defs, func(a, b *FunctionDef) int {
		ca, cb := slices.Index(Categories, a.Category), slices.Index(Categories, b.Category)
		if ca != cb {
			return ca - cb
		}
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
}

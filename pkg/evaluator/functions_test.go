package evaluator_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

var (
	testHeader = []string{"a", "b", "name", "list", "empty"}
	testRow    = []string{"4", "3", "  John Doe ", "x|y|z", ""}
)

func evalValue(t *testing.T, expr string) (types.Value, error) {
	t.Helper()
	ev := evaluator.New()
	program, err := ev.PrepareString(expr, testHeader)
	require.NoError(t, err, "prepare %q", expr)
	return program.Run(context.Background(), testRow)
}

func TestBuiltinFunctions(t *testing.T) {
	tests := []struct {
		expr     string
		want     string
		wantType string
	}{
		// arithmetic
		{"add(a, b)", "7", "integer"},
		{"add(a, b, 1.5)", "8.5", "float"},
		{"sub(b, a)", "-1", "integer"},
		{"mul(a, b, 2)", "24", "integer"},
		{"div(a, 2)", "2", "float"},
		{"idiv(7, 2)", "3", "integer"},
		{"idiv(-7, 2)", "-4", "integer"},
		{"mod(7, 3)", "1", "integer"},
		{"mod(7, 0)", "NaN", "float"},
		{"pow(2, 10)", "1024", "integer"},
		{"pow(4, 0.5)", "2", "float"},
		{"neg(a)", "-4", "integer"},
		{"abs(-2.5)", "2.5", "float"},
		{"inc(a)", "5", "integer"},
		{"dec(1.5)", "0.5", "float"},
		{"floor(2.7)", "2", "float"},
		{"ceil(2.1)", "3", "float"},
		{"round(2.5)", "3", "float"},
		{"trunc(-2.7)", "-2", "float"},
		{"round(a)", "4", "integer"},
		{"sqrt(16)", "4", "float"},
		{"log(100, 10)", "2", "float"},
		{"min(a, b, 10)", "3", "integer"},
		{"max(split('1|9|4', '|'))", "9", "integer"},
		{"sum(a, split('1|2', '|'), 0.5)", "7.5", "float"},

		// logic
		{"and(1, 'x')", "x", "string"},
		{"and(1, '', 2)", "", "string"},
		{"or('', 0, 'y')", "y", "string"},
		{"not(empty)", "true", "boolean"},
		{"if(gt(a, b), 'big', 'small')", "big", "string"},
		{"if(lt(a, b), 'big')", "", "none"},
		{"unless(lt(a, b), 'no')", "no", "string"},
		{"coalesce(empty, '', b)", "3", "string"},

		// comparison
		{"eq(a, 4.0)", "true", "boolean"},
		{"ne(a, b)", "true", "boolean"},
		{"ge(a, 4)", "true", "boolean"},
		{"le(a, 3)", "false", "boolean"},
		{"s_eq(a, '4')", "true", "boolean"},
		{"s_lt('10', '9')", "true", "boolean"},
		{"lt(10, 9)", "false", "boolean"},

		// strings
		{"len(name)", "11", "integer"},
		{"len(split(list, '|'))", "3", "integer"},
		{"len('été')", "3", "integer"},
		{"upper(trim(name))", "JOHN DOE", "string"},
		{"lower('ABC')", "abc", "string"},
		{"ltrim('xxaxx', 'x')", "axx", "string"},
		{"rtrim(name)", "  John Doe", "string"},
		{"split(list, '|')", "x|y|z", "list"},
		{"split('a1b22c', /\\d+/)", "a|b|c", "list"},
		{"split('a,b,c', ',', 1)", "a|b,c", "list"},
		{"join(split(list, '|'), '-')", "x-y-z", "string"},
		{"concat(a, '-', b)", "4-3", "string"},
		{"concat(split('a|b', '|'), 'c')", "a|b|c", "list"},
		{"contains(name, 'Doe')", "true", "boolean"},
		{"contains(name, /^\\s+j/i)", "true", "boolean"},
		{"contains(split(list, '|'), 'y')", "true", "boolean"},
		{"startswith(list, 'x|')", "true", "boolean"},
		{"endswith(list, 'y')", "false", "boolean"},
		{"replace(name, 'Doe', 'Smith')", "  John Smith ", "string"},
		{"replace('a1b22', /\\d/, '#')", "a#b##", "string"},
		{"count('banana', 'an')", "2", "integer"},
		{"count('banana', /a/)", "3", "integer"},
		{"escape_regex('a.b')", "a\\.b", "string"},
		{"fmt('{} + {} = {}', a, b, add(a, b))", "4 + 3 = 7", "string"},
		{"fmt('{}-{}', a)", "4-", "string"},

		// lists
		{"first(split(list, '|'))", "x", "string"},
		{"last('abc')", "c", "string"},
		{"first(split('', ','))", "", "string"},
		{"get(split(list, '|'), -1)", "z", "string"},
		{"get(split(list, '|'), 5, 'none')", "none", "string"},
		{"slice(split(list, '|'), 1)", "y|z", "list"},
		{"slice('abcdef', 1, -1)", "bcde", "string"},
		{"slice('abc', 5)", "", "string"},
		{"compact(split('a||b', '|'))", "a|b", "list"},
		{"flatten(split('1|2', '|'), 3, split('4', '|'))", "1|2|3|4", "list"},

		// utilities
		{"typeof(a)", "string", "string"},
		{"typeof(add(a, 1))", "integer", "string"},
		{"val(a)", "4", "string"},
		{"isnull(empty)", "true", "boolean"},
		{"isnull(a)", "false", "boolean"},
		{"isfloat('1.5')", "true", "boolean"},
		{"isint(a)", "true", "boolean"},
		{"isint(1.5)", "false", "boolean"},
		{"pathjoin('dir', name)", filepath.Join("dir", "  John Doe "), "string"},

		// column selectors
		{"col('b')", "3", "string"},
		{"col(0)", "4", "string"},
		{"`name` | trim", "John Doe", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evalValue(t, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.wantType, got.TypeOf())
		})
	}
}

func TestBuiltinFunctionErrors(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"add(name, 1)", `error when calling function "add": cannot safely cast from type "string" to type "number"`},
		{"upper(split(list, '|'))", `error when calling function "upper": cannot safely cast from type "list" to type "string"`},
		{"join(a, ',')", `error when calling function "join": cannot safely cast from type "string" to type "list"`},
		{"get(list, 1.5)", `error when calling function "get": cannot safely cast from type "float" to type "integer"`},
		{"split(list, '|', -1)", `error when calling function "split": cannot safely cast from type "integer" to type "unsigned_number"`},
		{"sum(split('1|x', '|'))", `error when calling function "sum": cannot safely cast from type "string" to type "number"`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := evalValue(t, tt.expr)
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)

			var evalErr *types.EvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.True(t, types.IsCastError(err))
		})
	}
}

func TestBuiltinRegistry(t *testing.T) {
	fn, ok := evaluator.GetFunction("add")
	require.True(t, ok)
	assert.Equal(t, evaluator.CategoryArithmetic, fn.Category)
	assert.Equal(t, "add(x, y, *n) -> number", fn.Help)

	_, ok = evaluator.GetFunction("nope")
	assert.False(t, ok)

	defs := evaluator.BuiltinFunctions()
	require.NotEmpty(t, defs)
	assert.Equal(t, evaluator.CategoryArithmetic, defs[0].Category)
	assert.Equal(t, evaluator.CategoryUtilities, defs[len(defs)-1].Category)
	for _, fd := range defs {
		assert.NotEmpty(t, fd.Help, fd.Name)
	}
}

package evaluator_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

func TestBoundArgumentOwnership(t *testing.T) {
	cell := types.NewString("cell")

	owned := evaluator.Owned(types.NewInteger(1))
	borrowed := evaluator.Borrowed(&cell)

	assert.False(t, owned.IsBorrowed())
	assert.True(t, borrowed.IsBorrowed())
	assert.True(t, borrowed.Value().Equal(cell))
}

func TestValidateArity(t *testing.T) {
	args := evaluator.NewBoundArgumentsFrom(types.NewInteger(1), types.NewInteger(2))

	err := args.ValidateArity(1)
	require.Error(t, err)
	assert.Equal(t, "expected 1 argument, got 2", err.Error())

	var arityErr *types.ArityError
	require.True(t, errors.As(err, &arityErr))
	assert.Equal(t, 1, arityErr.Min)
	assert.Equal(t, 2, arityErr.Got)

	assert.NoError(t, args.ValidateArity(2))
	assert.EqualError(t, args.ValidateMinArity(3), "expected at least 3 arguments, got 2")
	assert.EqualError(t, args.ValidateMinMaxArity(3, 4), "expected between 3 and 4 arguments, got 2")
	assert.NoError(t, args.ValidateMinMaxArity(1, 2))
}

func TestFixedArityAccessors(t *testing.T) {
	one := evaluator.NewBoundArgumentsFrom(types.NewString("x"))
	two := evaluator.NewBoundArgumentsFrom(types.NewString("3"), types.NewFloat(1.5))

	_, _, err := one.Get2()
	assert.True(t, types.IsArityError(err))

	_, err = two.Get1()
	assert.True(t, types.IsArityError(err))

	_, _, _, err = two.Get3()
	assert.EqualError(t, err, "expected 3 arguments, got 2")

	a, b, err := two.Get2Number()
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.Int())
	assert.Equal(t, 1.5, b.Float64())

	s1, s2, err := two.Get2Str()
	require.NoError(t, err)
	assert.Equal(t, "3", s1)
	assert.Equal(t, "1.5", s2)
}

func TestTypedAccessorsCastErrors(t *testing.T) {
	list := types.NewList([]types.Value{types.NewInteger(1)})

	_, err := evaluator.NewBoundArgumentsFrom(types.NewString("abc")).Pop1Number()
	assert.EqualError(t, err, `cannot safely cast from type "string" to type "number"`)

	_, err = evaluator.NewBoundArgumentsFrom(list).Get1Str()
	assert.EqualError(t, err, `cannot safely cast from type "list" to type "string"`)

	_, err = evaluator.NewBoundArgumentsFrom(types.NewInteger(1)).Pop1List()
	assert.EqualError(t, err, `cannot safely cast from type "integer" to type "list"`)

	items, err := evaluator.NewBoundArgumentsFrom(list).Pop1List()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPop1Consumes(t *testing.T) {
	args := evaluator.NewBoundArgumentsFrom(types.NewFloat(0))

	truthy, err := args.Pop1Bool()
	require.NoError(t, err)
	assert.True(t, truthy, "floats equal to zero are truthy")
	assert.True(t, args.IsEmpty())
}

func TestGetNNeverFails(t *testing.T) {
	args := evaluator.NewBoundArgumentsFrom(types.NewString("a"))

	slots := args.GetN(3)
	require.Len(t, slots, 3)
	require.NotNil(t, slots[0])
	assert.Equal(t, "a", slots[0].String())
	assert.Nil(t, slots[1])
	assert.Nil(t, slots[2])

	_, ok := args.Get(5)
	assert.False(t, ok)
}

func TestBorrowedArgumentsReadThrough(t *testing.T) {
	cell := types.NewString("5")
	args := evaluator.NewBoundArguments(2)
	args.PushBorrowed(&cell)
	args.Push(types.NewInteger(2))

	var got []string
	for _, v := range args.All() {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"5", "2"}, got)

	a, b, err := args.Get2Number()
	require.NoError(t, err)
	assert.Equal(t, int64(7), a.Add(b).Int())
}

func TestArityContract(t *testing.T) {
	assert.NoError(t, evaluator.Strict(2).Check(2))
	assert.EqualError(t, evaluator.Strict(1).Check(2), "expected 1 argument, got 2")
	assert.EqualError(t, evaluator.Min(2).Check(1), "expected at least 2 arguments, got 1")
	assert.EqualError(t, evaluator.Range(1, 3).Check(4), "expected between 1 and 3 arguments, got 4")
	assert.True(t, evaluator.Min(1).Accepts(10))
	assert.Equal(t, "1-3", evaluator.Range(1, 3).String())
	assert.Equal(t, "2+", evaluator.Min(2).String())
}

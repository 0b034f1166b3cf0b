package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(ErrSyntaxError, "Unexpected token", 4).WithToken(")")
	assert.Equal(t, "S0201 at position 4: Unexpected token", err.Error())
	assert.Equal(t, ")", err.Token)

	err = NewError(ErrSyntaxError, "Empty expression", -1)
	assert.Equal(t, "S0201: Empty expression", err.Error())

	cause := errors.New("boom")
	err = NewError(ErrInvalidRegex, "Invalid regex", 0).WithCause(cause)
	assert.ErrorIs(t, err, cause)
}

func TestArityErrorMessages(t *testing.T) {
	assert.Equal(t, "expected 1 argument, got 2", NewArityError(1, 2).Error())
	assert.Equal(t, "expected 3 arguments, got 0", NewArityError(3, 0).Error())
	assert.Equal(t, "expected at least 1 argument, got 0", NewMinArityError(1, 0).Error())
	assert.Equal(t, "expected between 1 and 2 arguments, got 3", NewRangeArityError(1, 2, 3).Error())
	assert.Equal(t, ErrArgumentCountMismatch, NewArityError(1, 2).Code())
}

func TestPrepareErrorMessages(t *testing.T) {
	tests := []struct {
		err  *PrepareError
		want string
	}{
		{
			&PrepareError{Code: ErrUnknownFunction, Function: "uper", Suggestion: "upper", Position: 0},
			`P0101 at position 0: unknown function "uper" (did you mean "upper"?)`,
		},
		{
			&PrepareError{Code: ErrStaticArity, Function: "add", Position: 2, Err: NewMinArityError(2, 1)},
			`P0102 at position 2: wrong number of arguments for function "add": expected at least 2 arguments, got 1`,
		},
		{
			&PrepareError{Code: ErrUnknownColumn, Column: ByName("nme").String(), Suggestion: "name", Position: -1},
			`P0103: cannot find column "nme" (did you mean "name"?)`,
		},
		{
			&PrepareError{Code: ErrNoImplicitValue, Function: "upper", Position: 0},
			`P0105 at position 0: no implicit value is available here (bare function "upper" needs one)`,
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestErrorPredicates(t *testing.T) {
	cast := NewCastError("string", "number")
	wrapped := fmt.Errorf("row 3: %w", &EvaluationError{Function: "add", Err: cast})

	assert.True(t, IsCastError(wrapped))
	assert.False(t, IsArityError(wrapped))
	assert.Equal(t, ErrCannotCast, cast.Code())
	assert.Equal(t, `row 3: error when calling function "add": cannot safely cast from type "string" to type "number"`, wrapped.Error())

	prep := &PrepareError{Code: ErrStaticArity, Function: "if", Err: NewRangeArityError(2, 3, 1)}
	assert.True(t, IsArityError(prep))
}

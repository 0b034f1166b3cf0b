package types

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of error.
type ErrorCode string

// Error codes. S0xxx are syntax errors raised by the parser, P0xxx are
// preparation errors raised when binding a program to a header, T0xxx are
// call errors raised while evaluating a row.
const (
	// S0xxx: Parser/Syntax errors
	ErrStringNotClosed   ErrorCode = "S0101"
	ErrNumberOutOfRange  ErrorCode = "S0102"
	ErrUnsupportedEscape ErrorCode = "S0103"
	ErrUnexpectedEnd     ErrorCode = "S0104"
	ErrSyntaxError       ErrorCode = "S0201"
	ErrExpectedToken     ErrorCode = "S0202"
	ErrTooDeep           ErrorCode = "S0203"
	ErrEmptyRegex        ErrorCode = "S0301"
	ErrRegexNotClosed    ErrorCode = "S0302"
	ErrInvalidRegex      ErrorCode = "S0303"

	// P0xxx: Preparation errors
	ErrUnknownFunction   ErrorCode = "P0101"
	ErrStaticArity       ErrorCode = "P0102"
	ErrUnknownColumn     ErrorCode = "P0103"
	ErrInvalidSelector   ErrorCode = "P0104"
	ErrNoImplicitValue   ErrorCode = "P0105"
	ErrDuplicateFunction ErrorCode = "P0106"

	// T0xxx: Call errors
	ErrArgumentCountMismatch ErrorCode = "T0410"
	ErrCannotCast            ErrorCode = "T1001"
)

// Error is a positioned syntax error produced while parsing expression text.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new syntax error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// CastError reports that a value could not be converted to the type an
// operation required.
type CastError struct {
	From string
	To   string
}

// NewCastError creates a cast error from one type name to another.
func NewCastError(from, to string) *CastError {
	return &CastError{From: from, To: to}
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot safely cast from type %q to type %q", e.From, e.To)
}

// Code returns ErrCannotCast.
func (e *CastError) Code() ErrorCode { return ErrCannotCast }

// ArityKind tells which arity contract an ArityError violates.
type ArityKind uint8

const (
	ArityStrict ArityKind = iota
	ArityMin
	ArityRange
)

// ArityError reports a wrong number of arguments. For ArityStrict and
// ArityMin only Min is used.
type ArityError struct {
	Kind ArityKind
	Min  int
	Max  int
	Got  int
}

// NewArityError reports that exactly expected arguments were required.
func NewArityError(expected, got int) *ArityError {
	return &ArityError{Kind: ArityStrict, Min: expected, Max: expected, Got: got}
}

// NewMinArityError reports that at least min arguments were required.
func NewMinArityError(min, got int) *ArityError {
	return &ArityError{Kind: ArityMin, Min: min, Max: -1, Got: got}
}

// NewRangeArityError reports that between min and max arguments were required.
func NewRangeArityError(min, max, got int) *ArityError {
	return &ArityError{Kind: ArityRange, Min: min, Max: max, Got: got}
}

func (e *ArityError) Error() string {
	switch e.Kind {
	case ArityMin:
		return fmt.Sprintf("expected at least %s, got %d", pluralArguments(e.Min), e.Got)
	case ArityRange:
		return fmt.Sprintf("expected between %d and %d arguments, got %d", e.Min, e.Max, e.Got)
	default:
		return fmt.Sprintf("expected %s, got %d", pluralArguments(e.Min), e.Got)
	}
}

// Code returns ErrArgumentCountMismatch.
func (e *ArityError) Code() ErrorCode { return ErrArgumentCountMismatch }

func pluralArguments(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}

// PrepareError is raised when an expression cannot be bound to a header:
// unknown function, statically wrong arity or unresolvable column.
type PrepareError struct {
	Code       ErrorCode
	Function   string
	Column     string
	Suggestion string
	Position   int
	Err        error
}

func (e *PrepareError) Error() string {
	var msg string

	switch e.Code {
	case ErrUnknownFunction:
		msg = fmt.Sprintf("unknown function %q", e.Function)
		if e.Suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
		}
	case ErrStaticArity:
		msg = fmt.Sprintf("wrong number of arguments for function %q: %v", e.Function, e.Err)
	case ErrUnknownColumn:
		msg = fmt.Sprintf("cannot find column %s", e.Column)
		if e.Suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
		}
	case ErrInvalidSelector:
		msg = fmt.Sprintf("invalid column selector in function %q", e.Function)
	case ErrNoImplicitValue:
		msg = "no implicit value is available here"
		if e.Function != "" {
			msg = fmt.Sprintf("%s (bare function %q needs one)", msg, e.Function)
		}
	case ErrDuplicateFunction:
		msg = fmt.Sprintf("function %q is already registered", e.Function)
	default:
		msg = "cannot prepare expression"
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}

	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying call error, if any.
func (e *PrepareError) Unwrap() error { return e.Err }

// EvaluationError is raised while evaluating a single row. It wraps a
// *CastError, an *ArityError, or the error of a custom function.
type EvaluationError struct {
	Function string
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("error when calling function %q: %v", e.Function, e.Err)
}

// Unwrap returns the underlying call error.
func (e *EvaluationError) Unwrap() error { return e.Err }

// IsCastError reports whether err wraps a *CastError.
func IsCastError(err error) bool {
	var ce *CastError
	return errors.As(err, &ce)
}

// IsArityError reports whether err wraps an *ArityError.
func IsArityError(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}

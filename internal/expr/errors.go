package expr

import "errors"

var (
	// ErrSyntax is returned for malformed input: unbalanced parentheses,
	// dangling operators, stray characters.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupportedExpression is returned for well-formed input that uses
	// something outside the arithmetic grammar or the allow-list.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrDivisionByZero is returned by / // % and by 0 ** negative.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrDomain is returned when a function or operator has no real
	// result for its input, or the result overflows.
	ErrDomain = errors.New("math domain error")

	// ErrArity is returned when a function is called with the wrong
	// number of arguments.
	ErrArity = errors.New("wrong number of arguments")
)

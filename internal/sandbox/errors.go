package sandbox

import "errors"

var (
	// ErrRejected is returned when code fails the pre-execution screen:
	// empty, too long, or containing a deny-listed pattern.
	ErrRejected = errors.New("code rejected")

	// ErrSyntax is returned when code does not parse. Nothing runs.
	ErrSyntax = errors.New("syntax error")

	// ErrExecution is returned for runtime errors inside the snippet.
	ErrExecution = errors.New("execution error")

	// ErrTimeout is returned when the wall-clock limit elapses.
	ErrTimeout = errors.New("execution timed out")

	// ErrUnavailable is returned when a runner cannot start its worker.
	ErrUnavailable = errors.New("sandbox runner unavailable")
)

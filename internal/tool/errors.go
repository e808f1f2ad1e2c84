package tool

import "errors"

var (
	// ErrToolNotFound is returned when a tool is not found in the registry.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDenied is returned when a tool execution is denied by policy.
	ErrDenied = errors.New("tool execution denied by policy")

	// ErrEmptyToolName is returned when a tool name is empty.
	ErrEmptyToolName = errors.New("tool name must not be empty")

	// ErrInvalidToolName is returned when a tool name is not lowercase
	// letters, digits and underscores starting with a letter.
	ErrInvalidToolName = errors.New("invalid tool name")

	// ErrToolInMultipleLists is returned when a tool appears in both the
	// allow and deny lists of a policy.
	ErrToolInMultipleLists = errors.New("tool appears in conflicting policy lists")

	// ErrMissingArgument is returned when a required argument is absent.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrInvalidArgument is returned when an argument has the wrong type or value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownArgument is returned for keys the schema does not declare.
	ErrUnknownArgument = errors.New("unknown argument")

	// ErrUnknownAction is returned when the action argument names no handler.
	ErrUnknownAction = errors.New("unknown action")
)

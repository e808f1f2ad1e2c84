package sandbox

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const snippetFile = "<snippet>"

// fileOptions enables the Python-like conveniences snippets expect:
// top-level loops, while, sets, recursion and rebinding globals.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// session is one compiled snippet bound to its own thread and buffers.
type session struct {
	req    Request
	thread *starlark.Thread
	stdout *capBuffer
	stderr *capBuffer
	env    starlark.StringDict

	prog *starlark.Program
	expr *starlark.Function
}

// compile screens and parse-checks req. Syntax errors surface here,
// before anything runs.
func compile(req Request) (*session, error) {
	if err := CheckCode(req.Code); err != nil {
		return nil, err
	}

	s := &session{
		req:    req,
		stdout: newCapBuffer(req.MaxOutput),
		stderr: newCapBuffer(req.MaxOutput),
	}
	s.env = s.predeclared()

	switch req.Mode {
	case ModeStatements:
		_, prog, err := starlark.SourceProgramOptions(fileOptions, snippetFile, req.Code, s.env.Has)
		if err != nil {
			return nil, syntaxError(err)
		}
		s.prog = prog
	case ModeExpression:
		fn, err := starlark.ExprFuncOptions(fileOptions, snippetFile, req.Code, s.env)
		if err != nil {
			return nil, syntaxError(err)
		}
		s.expr = fn
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrRejected, req.Mode)
	}

	s.thread = &starlark.Thread{
		Name:  "sandbox",
		Load:  loadModule,
		Print: func(_ *starlark.Thread, msg string) { s.stdout.WriteString(msg + "\n") },
	}
	s.thread.SetMaxExecutionSteps(req.MaxSteps)
	return s, nil
}

func (s *session) predeclared() starlark.StringDict {
	env := starlark.StringDict{
		"warn": starlark.NewBuiltin("warn", s.warn),
	}
	for name, m := range modules {
		env[name] = m
	}
	return env
}

// warn writes its arguments to stderr, space separated.
func (s *session) warn(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		if str, ok := starlark.AsString(a); ok {
			parts[i] = str
		} else {
			parts[i] = a.String()
		}
	}
	s.stderr.WriteString(strings.Join(parts, " ") + "\n")
	return starlark.None, nil
}

// exec runs the compiled snippet to completion on the calling goroutine.
func (s *session) exec() (res Result, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: interpreter panic: %v", ErrExecution, rec)
		}
		res.Stdout = s.stdout.String()
		res.Stderr = s.stderr.String()
		res.Elapsed = time.Since(start)
	}()

	var (
		value starlark.Value
		ok    bool
	)
	if s.prog != nil {
		globals, runErr := s.prog.Init(s.thread, s.env)
		if runErr != nil {
			return res, s.runtimeError(runErr)
		}
		value, ok = globals["_"]
	} else {
		v, runErr := starlark.Call(s.thread, s.expr, nil, nil)
		if runErr != nil {
			return res, s.runtimeError(runErr)
		}
		value, ok = v, true
	}

	if ok && value != nil {
		res.Value = Truncate(value.String(), s.req.MaxOutput)
		res.HasValue = true
	}
	return res, nil
}

// partial returns what was captured so far, for callers that stopped
// waiting.
func (s *session) partial(elapsed time.Duration) Result {
	return Result{
		Stdout:  s.stdout.String(),
		Stderr:  s.stderr.String(),
		Elapsed: elapsed,
	}
}

func (s *session) runtimeError(err error) error {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		s.stderr.WriteString(evalErr.Backtrace() + "\n")
		return fmt.Errorf("%w: %s", ErrExecution, evalErr.Msg)
	}
	s.stderr.WriteString(err.Error() + "\n")
	return fmt.Errorf("%w: %v", ErrExecution, err)
}

// syntaxError reduces parser and resolver errors to "line N: message".
func syntaxError(err error) error {
	var synErr syntax.Error
	if errors.As(err, &synErr) {
		return fmt.Errorf("%w: line %d: %s", ErrSyntax, synErr.Pos.Line, synErr.Msg)
	}
	var resErrs resolve.ErrorList
	if errors.As(err, &resErrs) && len(resErrs) > 0 {
		return fmt.Errorf("%w: line %d: %s", ErrSyntax, resErrs[0].Pos.Line, resErrs[0].Msg)
	}
	return fmt.Errorf("%w: %v", ErrSyntax, err)
}

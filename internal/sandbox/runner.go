// Package sandbox runs untrusted snippets of a Python-like language
// (Starlark) behind a pre-execution screen, a parse check and a
// wall-clock limit. The language has no filesystem, process or network
// primitives; the only modules reachable are math, random, datetime and
// json.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Runner executes a Request. Implementations differ in isolation:
// in-process goroutine, child process, or container.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// InProcessRunner interprets snippets on a supervised goroutine. On
// timeout the interpreter thread is cancelled and Run returns at once;
// the step limit bounds any work done before the cancellation is seen.
type InProcessRunner struct{}

// NewInProcessRunner returns the default runner.
func NewInProcessRunner() *InProcessRunner { return &InProcessRunner{} }

type outcome struct {
	res Result
	err error
}

// Run implements Runner.
func (r *InProcessRunner) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	s, err := compile(req)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan outcome, 1)
	go func() {
		res, err := s.exec()
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		s.thread.Cancel("timeout")
		res := s.partial(time.Since(start))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("%w after %s", ErrTimeout, req.Timeout)
		}
		return res, ctx.Err()
	}
}

var _ Runner = (*InProcessRunner)(nil)

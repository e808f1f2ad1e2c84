package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// WorkerCommand is the hidden CLI command that serves one request.
const WorkerCommand = "sandbox-worker"

// maxRequestBytes bounds what a worker reads from stdin.
const maxRequestBytes = 4 * MaxCodeLength

// workerResponse is the JSON a worker writes to stdout.
type workerResponse struct {
	Result
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
}

var errorKinds = map[string]error{
	"rejected":  ErrRejected,
	"syntax":    ErrSyntax,
	"execution": ErrExecution,
	"timeout":   ErrTimeout,
}

// ServeWorker reads one JSON Request from in, runs it in-process and
// writes the JSON response to out. It is the body of the sandbox-worker
// command and of the container entrypoint.
func ServeWorker(ctx context.Context, in io.Reader, out io.Writer) error {
	var req Request
	if err := json.NewDecoder(io.LimitReader(in, maxRequestBytes)).Decode(&req); err != nil {
		return fmt.Errorf("decoding sandbox request: %w", err)
	}

	res, err := NewInProcessRunner().Run(ctx, req)
	resp := workerResponse{Result: res}
	if err != nil {
		resp.ErrorKind, resp.Error = classify(err)
	}
	return json.NewEncoder(out).Encode(resp)
}

func classify(err error) (kind, detail string) {
	for k, sentinel := range errorKinds {
		if errors.Is(err, sentinel) {
			detail = strings.TrimPrefix(err.Error(), sentinel.Error())
			return k, strings.TrimPrefix(detail, ": ")
		}
	}
	return "execution", err.Error()
}

func (r workerResponse) err() error {
	if r.ErrorKind == "" {
		return nil
	}
	sentinel, ok := errorKinds[r.ErrorKind]
	if !ok {
		sentinel = ErrExecution
	}
	if r.Error == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, r.Error)
}

// runWorker feeds req to cmd and decodes the worker's answer. ctx must
// already carry the hard deadline; reaching it kills the child.
func runWorker(ctx context.Context, cmd *exec.Cmd, req Request) (Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encoding sandbox request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w after %s (worker killed)", ErrTimeout, req.Timeout)
		}
		return Result{}, ctx.Err()
	}

	var resp workerResponse
	if decErr := json.Unmarshal(stdout.Bytes(), &resp); decErr != nil {
		if runErr != nil {
			return Result{}, fmt.Errorf("%w: worker failed: %v: %s", ErrUnavailable, runErr,
				Truncate(strings.TrimSpace(stderr.String()), 512))
		}
		return Result{}, fmt.Errorf("%w: malformed worker response: %v", ErrUnavailable, decErr)
	}
	return resp.Result, resp.err()
}

package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/flemzord/toolclaw/internal/security"
)

// defaultGrace is how long past the request timeout a worker may take to
// report its own timeout before it is killed.
const defaultGrace = 2 * time.Second

// ProcessRunner re-executes a binary that serves ServeWorker, one child
// process per request. The child gets a sanitized environment and is
// killed when the hard deadline passes.
type ProcessRunner struct {
	// Command is the worker binary. Empty means the running executable.
	Command string

	// Args are passed to Command. Empty means [WorkerCommand].
	Args []string

	// ExtraEnv is appended to the sanitized environment.
	ExtraEnv []string

	// Credentials are redacted from the inherited environment.
	Credentials *security.CredentialStore

	// Grace extends the hard deadline past Request.Timeout.
	Grace time.Duration
}

// Run implements Runner.
func (r *ProcessRunner) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	if err := CheckCode(req.Code); err != nil {
		return Result{}, err
	}

	command := r.Command
	if command == "" {
		exe, err := os.Executable()
		if err != nil {
			return Result{}, fmt.Errorf("%w: locating executable: %v", ErrUnavailable, err)
		}
		command = exe
	}
	args := r.Args
	if len(args) == 0 {
		args = []string{WorkerCommand}
	}
	grace := r.Grace
	if grace <= 0 {
		grace = defaultGrace
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout+grace)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...) //nolint:gosec // command is the toolclaw binary or operator config
	cmd.Env = append(security.SanitizedEnv(r.Credentials), r.ExtraEnv...)
	return runWorker(ctx, cmd, req)
}

var _ Runner = (*ProcessRunner)(nil)

package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// ResourceLimits constrains a container worker.
type ResourceLimits struct {
	CPUShares int `yaml:"cpu_shares"`
	MemoryMB  int `yaml:"memory_mb"`
	PidsLimit int `yaml:"pids_limit"`
}

func resourceLimitsDefaults() ResourceLimits {
	return ResourceLimits{
		CPUShares: 512,
		MemoryMB:  128,
		PidsLimit: 64,
	}
}

// containerBinary is where the worker binary is mounted inside the container.
const containerBinary = "/usr/local/bin/toolclaw"

// DockerRunner serves each request from a throwaway container running the
// worker binary: read-only root, no network, no capabilities, nobody user.
// The binary must be statically linked to run on the image.
type DockerRunner struct {
	Image  string
	Binary string
	Limits ResourceLimits
	Grace  time.Duration

	lookPath func(string) (string, error)
}

// NewDockerRunner returns a DockerRunner with defaults for unset fields.
func NewDockerRunner(image, binary string, limits ResourceLimits) *DockerRunner {
	defaults := resourceLimitsDefaults()
	if limits.CPUShares <= 0 {
		limits.CPUShares = defaults.CPUShares
	}
	if limits.MemoryMB <= 0 {
		limits.MemoryMB = defaults.MemoryMB
	}
	if limits.PidsLimit <= 0 {
		limits.PidsLimit = defaults.PidsLimit
	}
	if image == "" {
		image = "alpine:3.20"
	}
	return &DockerRunner{
		Image:    image,
		Binary:   binary,
		Limits:   limits,
		lookPath: exec.LookPath,
	}
}

// Args returns the docker command line for one worker container.
func (d *DockerRunner) Args(binary string) []string {
	return []string{
		"run", "--rm", "-i",
		"--read-only",
		"--network=none",
		"--cap-drop", "ALL",
		"--security-opt", "no-new-privileges:true",
		"--user", "65534:65534",
		"--pids-limit", strconv.Itoa(d.Limits.PidsLimit),
		"--cpu-shares", strconv.Itoa(d.Limits.CPUShares),
		"--memory", strconv.Itoa(d.Limits.MemoryMB) + "m",
		"-v", binary + ":" + containerBinary + ":ro",
		d.Image,
		containerBinary, WorkerCommand,
	}
}

// Run implements Runner.
func (d *DockerRunner) Run(ctx context.Context, req Request) (Result, error) {
	req = req.withDefaults()
	if err := CheckCode(req.Code); err != nil {
		return Result{}, err
	}

	docker, err := d.lookPath("docker")
	if err != nil {
		return Result{}, fmt.Errorf("%w: docker not found on PATH", ErrUnavailable)
	}
	binary := d.Binary
	if binary == "" {
		if binary, err = os.Executable(); err != nil {
			return Result{}, fmt.Errorf("%w: locating executable: %v", ErrUnavailable, err)
		}
	}
	grace := d.Grace
	if grace <= 0 {
		// Container start-up is slower than a fork.
		grace = 3 * defaultGrace
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout+grace)
	defer cancel()

	cmd := exec.CommandContext(ctx, docker, d.Args(binary)...) //nolint:gosec // args are built from config, not user input
	return runWorker(ctx, cmd, req)
}

var _ Runner = (*DockerRunner)(nil)

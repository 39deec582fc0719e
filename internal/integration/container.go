package integration

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/primoscope/Spotify-echo-sub014/internal/core"
)

// CommandResult captures the outcome of one container-runtime invocation.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ContainerRunner drives the container runtime: image builds, container
// lifecycle, in-container health probes, and resource stats. A non-zero
// exit is a CollaboratorError handled phase-locally by the caller.
type ContainerRunner interface {
	BuildImage(ctx context.Context, dir, tag string) (*CommandResult, error)
	RunContainer(ctx context.Context, image, name string, args ...string) (*CommandResult, error)
	StopContainer(ctx context.Context, name string) (*CommandResult, error)
	RemoveContainer(ctx context.Context, name string) (*CommandResult, error)
	HealthProbe(ctx context.Context, name string, probe ...string) (*CommandResult, error)
	Stats(ctx context.Context, name string) (map[string]float64, error)
}

type dockerRunner struct {
	binary string
}

// NewContainerRunner creates a ContainerRunner shelling out to the docker
// binary.
func NewContainerRunner() ContainerRunner {
	return &dockerRunner{binary: "docker"}
}

// run executes one docker command, capturing stdout and stderr. Non-zero
// exits come back as CollaboratorError with the captured stderr attached.
func (d *dockerRunner) run(ctx context.Context, op string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, d.binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	result := &CommandResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, &core.CollaboratorError{
				Collaborator: "container",
				Op:           op,
				Err:          fmt.Errorf("exit %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr)),
			}
		}
		// Command could not be started (e.g., docker not installed).
		return result, &core.CollaboratorError{Collaborator: "container", Op: op, Err: err}
	}
	return result, nil
}

func (d *dockerRunner) BuildImage(ctx context.Context, dir, tag string) (*CommandResult, error) {
	return d.run(ctx, "build", "build", "-t", tag, dir)
}

func (d *dockerRunner) RunContainer(ctx context.Context, image, name string, args ...string) (*CommandResult, error) {
	full := append([]string{"run", "-d", "--name", name, image}, args...)
	return d.run(ctx, "run", full...)
}

func (d *dockerRunner) StopContainer(ctx context.Context, name string) (*CommandResult, error) {
	return d.run(ctx, "stop", "stop", name)
}

func (d *dockerRunner) RemoveContainer(ctx context.Context, name string) (*CommandResult, error) {
	return d.run(ctx, "remove", "rm", "-f", name)
}

func (d *dockerRunner) HealthProbe(ctx context.Context, name string, probe ...string) (*CommandResult, error) {
	full := append([]string{"exec", name}, probe...)
	return d.run(ctx, "health probe", full...)
}

// Stats collects cpu and memory usage for one container via
// `docker stats --no-stream`.
func (d *dockerRunner) Stats(ctx context.Context, name string) (map[string]float64, error) {
	result, err := d.run(ctx, "stats", "stats", "--no-stream", "--format", "{{.CPUPerc}} {{.MemPerc}}", name)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(strings.TrimSpace(result.Stdout))
	stats := make(map[string]float64, 2)
	if len(fields) >= 1 {
		stats["cpu_pct"] = parsePercent(fields[0])
	}
	if len(fields) >= 2 {
		stats["mem_pct"] = parsePercent(fields[1])
	}
	return stats, nil
}

func parsePercent(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0
	}
	return v
}

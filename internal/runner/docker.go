package runner

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DockerRunner runs solvers through the docker CLI. The binary is
// configurable so podman or a wrapper script can stand in.
type DockerRunner struct {
	Binary string
	Debug  bool
}

// NewDockerRunner creates a runner using the given docker-compatible binary
func NewDockerRunner(binary string, debug bool) *DockerRunner {
	if binary == "" {
		binary = "docker"
	}
	return &DockerRunner{Binary: binary, Debug: debug}
}

// killGrace bounds how long we wait for the client process after killing
// the container before giving up on a clean reap.
const killGrace = 10 * time.Second

// Run launches the container and blocks until it exits, times out, or the
// context is cancelled. The returned error is non-nil only for launch
// failures; timeouts and cancellations are reported in the Result.
func (d *DockerRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	start := time.Now()

	args := buildRunArgs(spec)
	if d.Debug {
		log.Printf("[docker] %s %s", d.Binary, strings.Join(args, " "))
	}

	cmd := exec.Command(d.Binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("starting %s: %w", d.Binary, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var deadline <-chan time.Time
	if spec.Timeout > 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case err := <-done:
		res := Result{
			Stdout:  stdoutBuf.Bytes(),
			Stderr:  stderrBuf.Bytes(),
			Elapsed: time.Since(start),
		}
		if err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				return Result{}, fmt.Errorf("waiting for %s: %w", d.Binary, err)
			}
			res.ExitCode = exitErr.ExitCode()
		}
		// The docker CLI reserves 125-127 for errors before the
		// contained command ran at all.
		if res.ExitCode >= 125 && res.ExitCode <= 127 {
			return Result{}, fmt.Errorf("container did not start (exit %d): %s",
				res.ExitCode, strings.TrimSpace(stderrBuf.String()))
		}
		return res, nil

	case <-deadline:
		d.kill(spec.Name)
		res := Result{TimedOut: true, Elapsed: time.Since(start)}
		if d.reap(done) {
			res.Stdout = stdoutBuf.Bytes()
			res.Stderr = stderrBuf.Bytes()
		}
		return res, nil

	case <-ctx.Done():
		d.kill(spec.Name)
		res := Result{Interrupted: true, Elapsed: time.Since(start)}
		if d.reap(done) {
			res.Stdout = stdoutBuf.Bytes()
			res.Stderr = stderrBuf.Bytes()
		}
		return res, nil
	}
}

// kill terminates the container process tree by name. The client process
// then exits on its own since the container is gone.
func (d *DockerRunner) kill(name string) {
	if name == "" {
		return
	}
	cmd := exec.Command(d.Binary, "kill", name)
	if out, err := cmd.CombinedOutput(); err != nil && d.Debug {
		log.Printf("[docker] kill %s: %s: %v", name, strings.TrimSpace(string(out)), err)
	}
}

// reap waits for the client process after a kill. It reports whether the
// process exited within the grace period; the output buffers are only
// safe to read when it did.
func (d *DockerRunner) reap(done chan error) bool {
	select {
	case <-done:
		return true
	case <-time.After(killGrace):
		if d.Debug {
			log.Printf("[docker] client did not exit within %s after kill", killGrace)
		}
		return false
	}
}

// buildRunArgs assembles the docker run invocation. The input file and run
// directory are bind-mounted, extra args pass through verbatim (including
// the --count-only convention understood by the wrapped images), and the
// in-container input path goes last.
func buildRunArgs(spec Spec) []string {
	containerInput := "/data/" + filepath.Base(spec.InputPath)

	args := []string{
		"run", "--rm",
		"--name", spec.Name,
		"-v", spec.InputPath + ":" + containerInput + ":ro",
		"-v", spec.RunDir + ":/out",
		spec.Image,
	}
	args = append(args, spec.ExtraArgs...)
	args = append(args, containerInput)
	return args
}

// ContainerName derives a unique container name for a run. The random
// suffix avoids collisions when the same sequence number reappears across
// batches.
func ContainerName(batchID string, seq int) string {
	short := batchID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("benchdock-%s-%04d-%s", short, seq, randomSuffix())
}

func randomSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Package runner launches one containerized solver invocation and reports
// how it ended. The driver owns scheduling and artifact layout; a Runner
// only knows how to start, watch, and kill a single container.
package runner

import (
	"context"
	"time"
)

// Spec describes one container invocation
type Spec struct {
	Image     string        // container image reference, opaque
	InputPath string        // host path of the input file, mounted read-only
	RunDir    string        // host path of the run directory, mounted writable
	ExtraArgs []string      // passed verbatim before the input path
	Timeout   time.Duration // hard wall-clock deadline for the run
	Name      string        // unique container name, used for kill
}

// Result reports how a run ended. A Result is only valid when the
// container actually started; launch failures are returned as errors.
type Result struct {
	ExitCode    int
	TimedOut    bool // deadline expired, container was killed
	Interrupted bool // outer context cancelled, container was killed
	Stdout      []byte
	Stderr      []byte
	Elapsed     time.Duration
}

// Runner executes a single container run to completion
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

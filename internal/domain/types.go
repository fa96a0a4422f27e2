package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Outcome classifies how a run ended
type Outcome string

const (
	// OutcomeCompleted means the solver process exited on its own,
	// with any exit code
	OutcomeCompleted Outcome = "completed"
	// OutcomeTimedOut means the run exceeded its wall-clock deadline
	// and the container was killed
	OutcomeTimedOut Outcome = "timed_out"
	// OutcomeLaunchFailed means the container runtime could not start
	// the run at all
	OutcomeLaunchFailed Outcome = "launch_failed"
	// OutcomeInterrupted means the batch was cancelled before this run
	// finished (or started)
	OutcomeInterrupted Outcome = "interrupted"
)

// ConfigError reports invalid batch configuration. It is the only error
// class that aborts before any run is dispatched.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// NewConfigError creates a ConfigError for the given field
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ParseTimeout accepts the two timeout spellings used throughout: Go
// duration strings ("5m") and bare integers meaning seconds ("600"),
// matching the convention of the surrounding benchmark scripts.
func ParseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, NewConfigError("timeout", "cannot parse %q", s)
}

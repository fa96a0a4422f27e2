package domain

import "time"

// Run represents a single solver invocation against one input file
type Run struct {
	Seq        int     // dispatch sequence number, 1-based
	InputPath  string  // absolute path of the input file
	RunDir     string  // directory holding this run's artifacts
	Outcome    Outcome
	ExitCode   int // meaningful only when Outcome is completed
	StartedAt  *time.Time
	FinishedAt *time.Time
	Elapsed    time.Duration
	Error      string // launch failure detail, empty otherwise
}

// Finalized reports whether the run has reached a terminal state
func (r *Run) Finalized() bool {
	return r.Outcome != ""
}

// Batch describes one driver invocation
type Batch struct {
	ID          string // UUID
	Image       string
	Folder      string
	Pattern     string
	Timeout     time.Duration
	Parallelism int
	ExtraArgs   []string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// BatchSummary aggregates run outcomes for a finished batch
type BatchSummary struct {
	Total        int
	Completed    int
	TimedOut     int
	LaunchFailed int
	Interrupted  int
}

// Count returns the summary over the given runs
func Count(runs []*Run) BatchSummary {
	s := BatchSummary{Total: len(runs)}
	for _, r := range runs {
		switch r.Outcome {
		case OutcomeCompleted:
			s.Completed++
		case OutcomeTimedOut:
			s.TimedOut++
		case OutcomeLaunchFailed:
			s.LaunchFailed++
		case OutcomeInterrupted:
			s.Interrupted++
		}
	}
	return s
}

// Package driver dispatches one containerized solver run per input file,
// enforces per-run timeouts, bounds parallelism, and aggregates per-run
// artifacts into a batch directory.
package driver

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adf-bdd/benchdock/internal/artifacts"
	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/runner"
)

// Options configures one batch
type Options struct {
	Image       string
	Folder      string
	Pattern     string
	Timeout     time.Duration
	Parallelism int // defaults to 1 when zero
	ExtraArgs   []string
	ResultsDir  string // parent of the batch directory
}

// BatchResult is everything one RunAll invocation produced
type BatchResult struct {
	Batch    domain.Batch
	BatchDir string
	Runs     []*domain.Run // ordered by dispatch sequence
	Summary  domain.BatchSummary
}

// EventType identifies a driver event
type EventType int

const (
	EventRunStarted EventType = iota
	EventRunFinished
	EventBatchFinished
)

// Event is emitted as runs progress. Run is nil for EventBatchFinished.
type Event struct {
	Type    EventType
	Batch   *domain.Batch
	Run     *domain.Run
	Active  int // runs executing when the event fired
	Pending int // runs not yet dispatched
}

// Driver runs batches. The zero value is not usable; construct with New.
type Driver struct {
	runner  runner.Runner
	onEvent func(Event)
	debug   bool

	mu      sync.Mutex
	emitMu  sync.Mutex
	active  int
	pending int
}

// New creates a Driver on the given runner. onEvent may be nil; when set
// it is invoked serially, never concurrently.
func New(r runner.Runner, onEvent func(Event), debug bool) *Driver {
	return &Driver{runner: r, onEvent: onEvent, debug: debug}
}

// RunAll executes one batch. Configuration problems return a
// *domain.ConfigError before any run starts; per-run failures are recorded
// on the run and never abort siblings. Cancelling ctx stops dispatching,
// kills in-flight containers, and returns partial results without error.
func (d *Driver) RunAll(ctx context.Context, opts Options) (*BatchResult, error) {
	if opts.Parallelism == 0 {
		opts.Parallelism = 1
	}
	if err := validate(opts); err != nil {
		return nil, err
	}

	inputs, err := Enumerate(opts.Folder, opts.Pattern)
	if err != nil {
		return nil, err
	}

	batch := domain.Batch{
		ID:          uuid.New().String(),
		Image:       opts.Image,
		Folder:      opts.Folder,
		Pattern:     opts.Pattern,
		Timeout:     opts.Timeout,
		Parallelism: opts.Parallelism,
		ExtraArgs:   opts.ExtraArgs,
		StartedAt:   time.Now(),
	}

	batchDir, err := createBatchDir(opts.ResultsDir, batch)
	if err != nil {
		return nil, err
	}

	// Pending runs are constructed up front: the sequence counter is
	// advanced here, single-threaded, so directory names cannot collide
	// however the workers interleave.
	runs := make([]*domain.Run, len(inputs))
	for i, input := range inputs {
		seq := i + 1
		runDir, err := artifacts.CreateRunDir(batchDir, seq, input)
		if err != nil {
			return nil, err
		}
		runs[i] = &domain.Run{Seq: seq, InputPath: input, RunDir: runDir}
	}

	d.mu.Lock()
	d.active = 0
	d.pending = len(runs)
	d.mu.Unlock()

	if d.debug {
		log.Printf("[driver] batch %s: %d runs, parallelism %d, timeout %s",
			batch.ID, len(runs), opts.Parallelism, opts.Timeout)
	}

	jobs := make(chan *domain.Run)
	var g errgroup.Group
	for i := 0; i < opts.Parallelism; i++ {
		g.Go(func() error {
			for run := range jobs {
				select {
				case <-ctx.Done():
					d.finalizeInterrupted(&batch, run)
				default:
					d.execute(ctx, &batch, run)
				}
			}
			return nil
		})
	}

	for _, run := range runs {
		jobs <- run
	}
	close(jobs)
	g.Wait()

	now := time.Now()
	batch.FinishedAt = &now

	result := &BatchResult{
		Batch:    batch,
		BatchDir: batchDir,
		Runs:     runs,
		Summary:  domain.Count(runs),
	}
	d.emit(Event{Type: EventBatchFinished, Batch: &batch})
	return result, nil
}

// execute drives one run from dispatch to finalization
func (d *Driver) execute(ctx context.Context, batch *domain.Batch, run *domain.Run) {
	started := time.Now()
	run.StartedAt = &started

	d.mu.Lock()
	d.active++
	d.pending--
	d.mu.Unlock()
	d.emit(Event{Type: EventRunStarted, Batch: batch, Run: run})

	res, err := d.runner.Run(ctx, runner.Spec{
		Image:     batch.Image,
		InputPath: run.InputPath,
		RunDir:    run.RunDir,
		ExtraArgs: batch.ExtraArgs,
		Timeout:   batch.Timeout,
		Name:      runner.ContainerName(batch.ID, run.Seq),
	})

	switch {
	case err != nil:
		run.Outcome = domain.OutcomeLaunchFailed
		run.Error = err.Error()
		if d.debug {
			log.Printf("[driver] run %04d (%s): launch failed: %v", run.Seq, run.InputPath, err)
		}
	case res.TimedOut:
		run.Outcome = domain.OutcomeTimedOut
	case res.Interrupted:
		run.Outcome = domain.OutcomeInterrupted
	default:
		run.Outcome = domain.OutcomeCompleted
		run.ExitCode = res.ExitCode
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.Elapsed = res.Elapsed
	if run.Elapsed == 0 {
		run.Elapsed = finished.Sub(started)
	}

	if werr := artifacts.Write(run.RunDir, res.Stdout, res.Stderr, statusOf(run)); werr != nil {
		if run.Error == "" {
			run.Error = werr.Error()
		}
		log.Printf("[driver] run %04d: writing artifacts: %v", run.Seq, werr)
	}

	d.mu.Lock()
	d.active--
	d.mu.Unlock()
	d.emit(Event{Type: EventRunFinished, Batch: batch, Run: run})
}

// finalizeInterrupted records a run that was never dispatched because the
// batch was cancelled. Its directory still gets a status record so the
// batch stays fully inspectable.
func (d *Driver) finalizeInterrupted(batch *domain.Batch, run *domain.Run) {
	run.Outcome = domain.OutcomeInterrupted
	now := time.Now()
	run.FinishedAt = &now

	d.mu.Lock()
	d.pending--
	d.mu.Unlock()

	if err := artifacts.Write(run.RunDir, nil, nil, statusOf(run)); err != nil {
		log.Printf("[driver] run %04d: writing interrupt record: %v", run.Seq, err)
	}
	d.emit(Event{Type: EventRunFinished, Batch: batch, Run: run})
}

func statusOf(run *domain.Run) artifacts.Status {
	st := artifacts.Status{
		Input:       run.InputPath,
		Outcome:     string(run.Outcome),
		ExitCode:    run.ExitCode,
		ElapsedSecs: run.Elapsed.Seconds(),
		Error:       run.Error,
	}
	if run.StartedAt != nil {
		st.StartedAt = *run.StartedAt
	}
	if run.FinishedAt != nil {
		st.FinishedAt = *run.FinishedAt
	}
	return st
}

func (d *Driver) emit(ev Event) {
	if d.onEvent == nil {
		return
	}
	d.mu.Lock()
	ev.Active = d.active
	ev.Pending = d.pending
	cb := d.onEvent
	d.mu.Unlock()
	// Serialized: emit holds its own lock so callbacks never interleave.
	d.emitMu.Lock()
	cb(ev)
	d.emitMu.Unlock()
}

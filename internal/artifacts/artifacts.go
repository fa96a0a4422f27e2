// Package artifacts owns the on-disk layout of a run directory:
// stdout.log, stderr.log, and a status.toml record.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	StdoutFile = "stdout.log"
	StderrFile = "stderr.log"
	StatusFile = "status.toml"
)

// Status is the per-run record written next to the captured output
type Status struct {
	Input       string    `toml:"input"`
	Outcome     string    `toml:"outcome"`
	ExitCode    int       `toml:"exit_code"`
	ElapsedSecs float64   `toml:"elapsed_secs"`
	StartedAt   time.Time `toml:"started_at"`
	FinishedAt  time.Time `toml:"finished_at"`
	Error       string    `toml:"error,omitempty"`
}

// RunDirName derives the unique run directory name from the dispatch
// sequence number and the input file stem. The counter keeps names
// collision-free across concurrent runs.
func RunDirName(seq int, inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%04d_%s", seq, stem)
}

// CreateRunDir makes a fresh run directory under the batch directory
func CreateRunDir(batchDir string, seq int, inputPath string) (string, error) {
	dir := filepath.Join(batchDir, RunDirName(seq, inputPath))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	return dir, nil
}

// Write stores captured output and the status record into the run
// directory. The first failing write wins; later files are still
// attempted so a partial directory remains inspectable.
func Write(runDir string, stdout, stderr []byte, st Status) error {
	var firstErr error

	if err := os.WriteFile(filepath.Join(runDir, StdoutFile), stdout, 0644); err != nil {
		firstErr = err
	}
	if err := os.WriteFile(filepath.Join(runDir, StderrFile), stderr, 0644); err != nil && firstErr == nil {
		firstErr = err
	}

	data, err := toml.Marshal(st)
	if err != nil && firstErr == nil {
		firstErr = err
	}
	if err == nil {
		if err := os.WriteFile(filepath.Join(runDir, StatusFile), data, 0644); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// ReadStatus loads the status record from a run directory
func ReadStatus(runDir string) (Status, error) {
	var st Status
	data, err := os.ReadFile(filepath.Join(runDir, StatusFile))
	if err != nil {
		return st, err
	}
	if err := toml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parsing %s: %w", StatusFile, err)
	}
	return st, nil
}

package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/adf-bdd/benchdock/internal/domain"
)

// validate checks batch options before anything is dispatched
func validate(opts Options) error {
	if opts.Image == "" {
		return domain.NewConfigError("docker-image", "image reference is required")
	}

	info, err := os.Stat(opts.Folder)
	if err != nil {
		return domain.NewConfigError("folder", "%s: %v", opts.Folder, err)
	}
	if !info.IsDir() {
		return domain.NewConfigError("folder", "%s is not a directory", opts.Folder)
	}

	if opts.Timeout <= 0 {
		return domain.NewConfigError("timeout", "must be positive, got %s", opts.Timeout)
	}
	if opts.Parallelism < 1 {
		return domain.NewConfigError("parallel", "must be >= 1, got %d", opts.Parallelism)
	}

	if opts.Pattern != "" {
		if _, err := filepath.Match(opts.Pattern, "probe"); err != nil {
			return domain.NewConfigError("match", "bad pattern %q: %v", opts.Pattern, err)
		}
	}
	return nil
}

// Enumerate lists the files in folder whose base name matches the glob
// pattern, sorted lexicographically so repeated batches dispatch in the
// same order. An empty pattern matches everything. Zero matches is not
// an error.
func Enumerate(folder, pattern string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", folder, err)
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, e.Name())
			if err != nil {
				return nil, domain.NewConfigError("match", "bad pattern %q: %v", pattern, err)
			}
			if !ok {
				continue
			}
		}
		abs, err := filepath.Abs(filepath.Join(folder, e.Name()))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, abs)
	}

	sort.Strings(inputs)
	return inputs, nil
}

// createBatchDir makes a fresh directory for the batch's run directories,
// named by start time plus a batch ID prefix
func createBatchDir(resultsDir string, batch domain.Batch) (string, error) {
	short := batch.ID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("%s_%s", batch.StartedAt.Format("20060102T150405"), short)
	dir := filepath.Join(resultsDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating batch dir: %w", err)
	}
	return dir, nil
}

// Package suite loads declarative benchmark suite manifests. A suite
// binds a solver image to a corpus folder, match pattern, limits, and the
// solver's argument convention, replacing the per-solver wrapper scripts.
package suite

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/driver"
)

// Suite describes one named benchmark configuration
type Suite struct {
	Name      string   `yaml:"name"`
	Image     string   `yaml:"image"`
	Folder    string   `yaml:"folder"`
	Match     string   `yaml:"match"`
	Timeout   string   `yaml:"timeout"` // duration string or bare seconds
	Parallel  int      `yaml:"parallel"`
	Args      []string `yaml:"args"`
	CountOnly bool     `yaml:"count_only"`
}

// Manifest is the top-level suites file
type Manifest struct {
	Suites []Suite `yaml:"suites"`
}

// Load reads and validates a suites manifest
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	seen := make(map[string]bool)
	for i := range m.Suites {
		s := &m.Suites[i]
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("suite %d: %w", i, err)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate suite name %q", s.Name)
		}
		seen[s.Name] = true
	}

	return &m, nil
}

// Get returns the named suite
func (m *Manifest) Get(name string) (*Suite, bool) {
	for i := range m.Suites {
		if m.Suites[i].Name == name {
			return &m.Suites[i], true
		}
	}
	return nil, false
}

// Validate checks required fields and fills defaults
func (s *Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if s.Image == "" {
		return fmt.Errorf("image is required")
	}
	if s.Folder == "" {
		return fmt.Errorf("folder is required")
	}
	if s.Timeout != "" {
		if d, err := domain.ParseTimeout(s.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
		} else if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %q", s.Timeout)
		}
	}
	if s.Parallel < 0 {
		return fmt.Errorf("parallel must be >= 1, got %d", s.Parallel)
	}
	return nil
}

// Options translates the suite into driver options. Unset limits fall back
// to the given defaults; count_only prepends the flag the wrapped images
// understand.
func (s *Suite) Options(resultsDir string, defaultTimeout time.Duration, defaultParallel int) (driver.Options, error) {
	timeout := defaultTimeout
	if s.Timeout != "" {
		d, err := domain.ParseTimeout(s.Timeout)
		if err != nil {
			return driver.Options{}, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
		}
		timeout = d
	}

	parallel := s.Parallel
	if parallel == 0 {
		parallel = defaultParallel
	}

	args := s.Args
	if s.CountOnly {
		args = append([]string{"--count-only"}, args...)
	}

	return driver.Options{
		Image:       s.Image,
		Folder:      s.Folder,
		Pattern:     s.Match,
		Timeout:     timeout,
		Parallelism: parallel,
		ExtraArgs:   args,
		ResultsDir:  resultsDir,
	}, nil
}

// Package batch runs benchmark suites on cron schedules.
package batch

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule binds a suite name to a cron expression
type Schedule struct {
	Suite string
	Cron  string
}

// Validate checks if the schedule is valid
func (s *Schedule) Validate() error {
	if s.Suite == "" {
		return fmt.Errorf("suite name is required")
	}
	if s.Cron == "" {
		return fmt.Errorf("cron expression is required")
	}
	if _, err := ParseCron(s.Cron); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// ParseCron parses a cron expression
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// Scheduler manages scheduled suite runs
type Scheduler struct {
	schedules map[string]Schedule
	parser    cron.Parser
	lastRun   map[string]time.Time
	running   map[string]bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewScheduler creates a new suite scheduler
func NewScheduler(schedules []Schedule) (*Scheduler, error) {
	s := &Scheduler{
		schedules: make(map[string]Schedule),
		parser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		lastRun:   make(map[string]time.Time),
		running:   make(map[string]bool),
		stopChan:  make(chan struct{}),
	}

	for _, sched := range schedules {
		if err := sched.Validate(); err != nil {
			return nil, err
		}
		s.schedules[sched.Suite] = sched
	}

	return s, nil
}

// NextRun returns the next scheduled run time for a suite
func (s *Scheduler) NextRun(suite string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[suite]
	if !ok {
		return time.Time{}
	}

	parsed, err := s.parser.Parse(sched.Cron)
	if err != nil {
		return time.Time{}
	}

	return parsed.Next(time.Now())
}

// ShouldRun returns true if a suite should run now. A suite still in
// flight never triggers a second overlapping run.
func (s *Scheduler) ShouldRun(suite string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[suite]
	if !ok {
		return false
	}

	if s.running[suite] {
		return false
	}

	parsed, err := s.parser.Parse(sched.Cron)
	if err != nil {
		return false
	}

	lastRun := s.lastRun[suite]
	if lastRun.IsZero() {
		lastRun = time.Now().Add(-24 * time.Hour)
	}

	nextRun := parsed.Next(lastRun)
	return time.Now().After(nextRun)
}

// MarkRunning marks a suite as currently running
func (s *Scheduler) MarkRunning(suite string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[suite] = true
}

// MarkComplete marks a suite run as complete
func (s *Scheduler) MarkComplete(suite string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[suite] = false
	s.lastRun[suite] = time.Now()
}

// ListSuites returns all scheduled suite names
func (s *Scheduler) ListSuites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.schedules))
	for name := range s.schedules {
		names = append(names, name)
	}
	return names
}

// Start begins the scheduler loop
func (s *Scheduler) Start(runFunc func(Schedule) error) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			for name := range s.schedules {
				if s.ShouldRun(name) {
					s.mu.RLock()
					sched := s.schedules[name]
					s.mu.RUnlock()

					s.MarkRunning(name)
					go func(sc Schedule) {
						if err := runFunc(sc); err != nil {
							log.Printf("[schedule] suite %s failed: %v", sc.Suite, err)
						}
						s.MarkComplete(sc.Suite)
					}(sched)
				}
			}
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

package batch

import (
	"testing"
	"time"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 22 * * *", false},   // 10 PM daily
		{"0 12 * * 1-5", false}, // noon weekdays
		{"*/5 * * * *", false},  // every 5 minutes
		{"invalid", true},
	}

	for _, tt := range tests {
		_, err := ParseCron(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCron(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestSchedule_Validate(t *testing.T) {
	sched := Schedule{
		Suite: "nightly",
		Cron:  "0 2 * * *",
	}

	if err := sched.Validate(); err != nil {
		t.Errorf("Valid schedule should not error: %v", err)
	}

	sched.Suite = ""
	if err := sched.Validate(); err == nil {
		t.Error("Empty suite should error")
	}

	sched = Schedule{Suite: "nightly", Cron: "not-cron"}
	if err := sched.Validate(); err == nil {
		t.Error("Bad cron should error")
	}
}

func TestScheduler_NextRun(t *testing.T) {
	sched, err := NewScheduler([]Schedule{{Suite: "nightly", Cron: "0 2 * * *"}})
	if err != nil {
		t.Fatal(err)
	}

	next := sched.NextRun("nightly")
	if next.IsZero() {
		t.Error("NextRun should return a time")
	}
	if !next.After(time.Now()) {
		t.Error("NextRun should be in the future")
	}

	if !sched.NextRun("unknown").IsZero() {
		t.Error("NextRun for unknown suite should be zero")
	}
}

func TestScheduler_ShouldRun(t *testing.T) {
	sched, err := NewScheduler([]Schedule{{Suite: "every-minute", Cron: "* * * * *"}})
	if err != nil {
		t.Fatal(err)
	}

	// Mark as last run two minutes ago
	sched.lastRun["every-minute"] = time.Now().Add(-2 * time.Minute)

	if !sched.ShouldRun("every-minute") {
		t.Error("Should run after cron interval passed")
	}

	sched.MarkRunning("every-minute")
	if sched.ShouldRun("every-minute") {
		t.Error("Should not run while already in flight")
	}

	sched.MarkComplete("every-minute")
	if sched.ShouldRun("every-minute") {
		t.Error("Should not run immediately after completing")
	}
}

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/driver"
)

func TestNewModel(t *testing.T) {
	events := make(chan driver.Event)
	model := NewModel(ModelConfig{Image: "adfbdd/tsconj", Total: 5, Events: events})

	if model.image != "adfbdd/tsconj" {
		t.Errorf("image = %q", model.image)
	}
	if model.total != 5 {
		t.Errorf("total = %d, want 5", model.total)
	}
	if model.pending != 5 {
		t.Errorf("pending = %d, want 5", model.pending)
	}
	if model.Done() {
		t.Error("fresh model should not be done")
	}
}

func TestModel_RunLifecycle(t *testing.T) {
	model := NewModel(ModelConfig{Image: "img", Total: 2})

	started := time.Now()
	finished := started.Add(time.Second)
	run := &domain.Run{
		Seq:        1,
		InputPath:  "/corpus/a.txt",
		StartedAt:  &started,
		FinishedAt: &finished,
	}

	model.apply(driver.Event{Type: driver.EventRunStarted, Run: run, Pending: 1})
	if len(model.active) != 1 {
		t.Fatalf("active = %d, want 1", len(model.active))
	}

	run.Outcome = domain.OutcomeTimedOut
	run.Elapsed = time.Second
	model.apply(driver.Event{Type: driver.EventRunFinished, Run: run, Pending: 1})

	if len(model.active) != 0 {
		t.Errorf("active = %d, want 0", len(model.active))
	}
	if len(model.recent) != 1 || model.recent[0].Outcome != domain.OutcomeTimedOut {
		t.Errorf("recent = %+v", model.recent)
	}
	if model.summary.TimedOut != 1 {
		t.Errorf("summary = %+v", model.summary)
	}

	model.apply(driver.Event{Type: driver.EventBatchFinished})
	if !model.Done() {
		t.Error("model should be done after batch finished")
	}
}

func TestModel_QuitKey(t *testing.T) {
	model := NewModel(ModelConfig{Image: "img", Total: 1})

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("q produced %v, want tea.Quit", msg)
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(ModelConfig{Image: "adfbdd/tsconj", Total: 3})
	model.width = 100
	model.height = 40

	out := model.View()
	if !strings.Contains(out, "adfbdd/tsconj") {
		t.Error("view should mention the image")
	}
	if !strings.Contains(out, "0/3 done") {
		t.Errorf("view should show progress, got:\n%s", out)
	}
}

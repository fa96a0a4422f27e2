package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/driver"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case eventMsg:
		m.apply(driver.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.done = true
	}

	return m, nil
}

func (m *Model) apply(ev driver.Event) {
	m.pending = ev.Pending

	switch ev.Type {
	case driver.EventRunStarted:
		started := *ev.Run.StartedAt
		m.active = append(m.active, ActiveRun{
			Seq:       ev.Run.Seq,
			Input:     ev.Run.InputPath,
			StartedAt: started,
		})

	case driver.EventRunFinished:
		for i, ar := range m.active {
			if ar.Seq == ev.Run.Seq {
				m.active = append(m.active[:i], m.active[i+1:]...)
				break
			}
		}
		m.recent = append([]FinishedRun{{
			Seq:     ev.Run.Seq,
			Input:   ev.Run.InputPath,
			Outcome: ev.Run.Outcome,
			Elapsed: ev.Run.Elapsed,
		}}, m.recent...)
		if len(m.recent) > maxRecent {
			m.recent = m.recent[:maxRecent]
		}
		m.bump(ev)

	case driver.EventBatchFinished:
		m.done = true
	}
}

func (m *Model) bump(ev driver.Event) {
	m.summary.Total++
	switch ev.Run.Outcome {
	case domain.OutcomeCompleted:
		m.summary.Completed++
	case domain.OutcomeTimedOut:
		m.summary.TimedOut++
	case domain.OutcomeLaunchFailed:
		m.summary.LaunchFailed++
	case domain.OutcomeInterrupted:
		m.summary.Interrupted++
	}
}

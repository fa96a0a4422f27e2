package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/driver"
)

// ActiveRun is a run currently executing, as shown in the dashboard
type ActiveRun struct {
	Seq       int
	Input     string
	StartedAt time.Time
}

// FinishedRun is a recently finished run line
type FinishedRun struct {
	Seq     int
	Input   string
	Outcome domain.Outcome
	Elapsed time.Duration
}

// Model is the TUI application model for one batch
type Model struct {
	// Batch identity
	image string
	total int

	// Live state
	active   []ActiveRun
	recent   []FinishedRun // newest first, capped
	pending  int
	summary  domain.BatchSummary
	done     bool
	start    time.Time

	// Event source
	events <-chan driver.Event

	// UI state
	width  int
	height int
}

// maxRecent bounds the finished-run scrollback
const maxRecent = 12

// ModelConfig holds initial data for the TUI model
type ModelConfig struct {
	Image  string
	Total  int
	Events <-chan driver.Event
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	return Model{
		image:   cfg.Image,
		total:   cfg.Total,
		pending: cfg.Total,
		events:  cfg.Events,
		start:   time.Now(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), tickCmd())
}

// eventMsg wraps a driver event for bubbletea
type eventMsg driver.Event

// eventsClosedMsg signals that the driver finished and closed the channel
type eventsClosedMsg struct{}

// tickMsg drives elapsed-time refreshes
type tickMsg time.Time

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Done reports whether the batch has finished
func (m Model) Done() bool {
	return m.done
}

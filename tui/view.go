package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/adf-bdd/benchdock/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	queuedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	timeoutStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Foreground(lipgloss.Color("255"))
)

// View renders the dashboard
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("benchdock | %s", m.image)))
	b.WriteString("\n\n")

	b.WriteString(m.renderActive())
	b.WriteString("\n")
	b.WriteString(m.renderRecent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderActive() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Active (%d)\n", len(m.active)))

	if len(m.active) == 0 {
		b.WriteString(queuedStyle.Render("  idle"))
		b.WriteString("\n")
	}
	for _, ar := range m.active {
		line := fmt.Sprintf("  %04d  %-40s %8s",
			ar.Seq, trim(filepath.Base(ar.Input), 40), time.Since(ar.StartedAt).Round(time.Second))
		b.WriteString(runningStyle.Render(line))
		b.WriteString("\n")
	}

	return sectionStyle.Render(b.String())
}

func (m Model) renderRecent() string {
	var b strings.Builder
	b.WriteString("Finished\n")

	if len(m.recent) == 0 {
		b.WriteString(queuedStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for _, fr := range m.recent {
		line := fmt.Sprintf("  %04d  %-40s %-13s %8s",
			fr.Seq, trim(filepath.Base(fr.Input), 40), fr.Outcome, fr.Elapsed.Round(time.Millisecond))
		b.WriteString(outcomeStyle(fr.Outcome).Render(line))
		b.WriteString("\n")
	}

	return sectionStyle.Render(b.String())
}

func (m Model) renderStatusBar() string {
	done := m.summary.Total
	status := fmt.Sprintf(" %d/%d done | %d ok | %d timeout | %d failed | pending %d | %s ",
		done, m.total,
		m.summary.Completed, m.summary.TimedOut, m.summary.LaunchFailed,
		m.pending, time.Since(m.start).Round(time.Second))
	if m.done {
		status += "| finished, press q "
	} else {
		status += "| q to quit "
	}
	return statusBarStyle.Render(status)
}

func outcomeStyle(o domain.Outcome) lipgloss.Style {
	switch o {
	case domain.OutcomeTimedOut:
		return timeoutStyle
	case domain.OutcomeLaunchFailed:
		return failedStyle
	case domain.OutcomeInterrupted:
		return queuedStyle
	default:
		return runningStyle
	}
}

func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ticolabs/papibot/internal/orchestrator"
	"github.com/ticolabs/papibot/internal/responder"
)

// StatsSource is what the monitor polls once a second. The orchestrator
// implements it.
type StatsSource interface {
	Snapshot(now time.Time) (orchestrator.Totals, responder.Snapshot)
}

// Styles for the live monitor.
var (
	monitorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(52)

	monitorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	monitorLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Width(18)

	monitorValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255"))

	monitorGoodStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	monitorWaitStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	monitorSpinnerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))

	monitorHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))
)

// monitorTickMsg drives the once-a-second refresh.
type monitorTickMsg time.Time

// monitorModel is the Bubble Tea model for the live dashboard.
type monitorModel struct {
	source  StatsSource
	spinner spinner.Model

	totals orchestrator.Totals
	snap   responder.Snapshot
	now    time.Time
}

func newMonitorModel(source StatsSource) monitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = monitorSpinnerStyle

	now := time.Now()
	totals, snap := source.Snapshot(now)
	return monitorModel{
		source:  source,
		spinner: s,
		totals:  totals,
		snap:    snap,
		now:     now,
	}
}

func monitorTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, monitorTick())
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case monitorTickMsg:
		m.now = time.Time(msg)
		m.totals, m.snap = m.source.Snapshot(m.now)
		return m, monitorTick()
	}

	return m, nil
}

func (m monitorModel) View() string {
	var sb strings.Builder

	sb.WriteString(monitorTitleStyle.Render("papibot live monitor"))
	sb.WriteString(" ")
	sb.WriteString(m.spinner.View())
	sb.WriteString("\n\n")

	uptime := time.Duration(0)
	if !m.snap.StartedAt.IsZero() {
		uptime = m.snap.Uptime(m.now)
	}
	sb.WriteString(monitorRow("Uptime", monitorValueStyle.Render(uptime.Round(time.Second).String())))
	sb.WriteString(monitorRow("Processed", fmt.Sprintf("%d", m.snap.MessagesProcessed)))
	sb.WriteString(monitorRow("Offers", fmt.Sprintf("%d", m.snap.OffersDetected)))
	sb.WriteString(monitorRow("Replies Sent", fmt.Sprintf("%d", m.snap.ResponsesSent)))
	sb.WriteString(monitorRow("Errors", fmt.Sprintf("%d", m.snap.Errors)))
	sb.WriteString(monitorRow("Avg Latency", m.snap.AvgResponseLatency.Round(time.Millisecond).String()))
	sb.WriteString(monitorRow("Last Minute", fmt.Sprintf("%d sent", m.snap.SentLastMinute)))

	if m.snap.Limiter.CanSend {
		sb.WriteString(monitorRow("Limiter", monitorGoodStyle.Render("ready")))
	} else {
		sb.WriteString(monitorRow("Limiter",
			monitorWaitStyle.Render("wait "+m.snap.Limiter.Wait.Round(time.Millisecond).String())))
	}

	if m.totals.Restarts > 0 {
		sb.WriteString(monitorRow("Restarts", monitorWaitStyle.Render(fmt.Sprintf("%d", m.totals.Restarts))))
	}

	sb.WriteString("\n")
	sb.WriteString(monitorHelpStyle.Render("q to quit"))

	return monitorBoxStyle.Render(sb.String())
}

// monitorRow renders a label-value row.
func monitorRow(label, value string) string {
	return fmt.Sprintf("%s %s\n", monitorLabelStyle.Render(label+":"), value)
}

// RunMonitor runs the live dashboard until the user quits or ctx ends.
func RunMonitor(ctx context.Context, source StatsSource) error {
	p := tea.NewProgram(newMonitorModel(source))

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}
	return nil
}

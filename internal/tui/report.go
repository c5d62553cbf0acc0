package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ticolabs/papibot/internal/journal"
)

var reportEntryStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252"))

// ShowReport renders the journal latency aggregates and recent replies.
func ShowReport(sum journal.Summary, recent []journal.Entry) {
	var sb strings.Builder

	sb.WriteString(statusTitleStyle.Render("papibot Response Report"))
	sb.WriteString("\n\n")

	if sum.Count == 0 {
		sb.WriteString(statusDisabledStyle.Render("  No replies recorded yet."))
		fmt.Println(statusBoxStyle.Render(sb.String()))
		return
	}

	sb.WriteString(statusSectionStyle.Render("Latency"))
	sb.WriteString("\n")
	sb.WriteString(renderStatusRow("Replies", statusValueStyle.Render(fmt.Sprintf("%d", sum.Count))))
	sb.WriteString(renderStatusRow("Average", statusValueStyle.Render(fmt.Sprintf("%dms", sum.AvgMs))))
	sb.WriteString(renderStatusRow("Min / Max", statusValueStyle.Render(fmt.Sprintf("%dms / %dms", sum.MinMs, sum.MaxMs))))
	sb.WriteString(renderStatusRow("P50 / P95", statusValueStyle.Render(fmt.Sprintf("%dms / %dms", sum.P50Ms, sum.P95Ms))))
	sb.WriteString(renderStatusRow("First Reply", statusValueStyle.Render(sum.FirstAt.Format(time.DateTime))))
	sb.WriteString(renderStatusRow("Last Reply", statusValueStyle.Render(sum.LastAt.Format(time.DateTime))))

	if len(recent) > 0 {
		sb.WriteString("\n")
		sb.WriteString(statusSectionStyle.Render("Recent"))
		sb.WriteString("\n")
		for _, e := range recent {
			offer := e.Offer
			if r := []rune(offer); len(r) > 40 {
				offer = string(r[:37]) + "..."
			}
			sb.WriteString(reportEntryStyle.Render(fmt.Sprintf("  %s  %4dms  %s",
				e.SentAt.Format("01-02 15:04"), e.LatencyMs, offer)))
			sb.WriteString("\n")
		}
	}

	fmt.Println(statusBoxStyle.Render(sb.String()))
}

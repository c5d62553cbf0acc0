package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ticolabs/papibot/internal/config"
)

// Status display styles.
var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1).
				Padding(0, 1)

	statusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(60)

	statusSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginTop(1)

	statusLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Width(20)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255"))

	statusEnabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	statusDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	statusWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)
)

// ShowStatus displays the current configuration status.
func ShowStatus(cfg *config.Config) error {
	var sb strings.Builder

	title := statusTitleStyle.Render("papibot Configuration Status")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString(statusSectionStyle.Render("Bot"))
	sb.WriteString("\n")
	sb.WriteString(renderBotStatus(cfg))
	sb.WriteString("\n")

	sb.WriteString(statusSectionStyle.Render("Transport"))
	sb.WriteString("\n")
	sb.WriteString(renderTransportStatus(cfg))
	sb.WriteString("\n")

	sb.WriteString(statusSectionStyle.Render("Detection"))
	sb.WriteString("\n")
	sb.WriteString(renderDetectionStatus(cfg))
	sb.WriteString("\n")

	sb.WriteString(statusSectionStyle.Render("Runtime"))
	sb.WriteString("\n")
	sb.WriteString(renderRuntimeStatus(cfg))

	fmt.Println(statusBoxStyle.Render(sb.String()))

	return nil
}

// renderBotStatus renders the bot identity section.
func renderBotStatus(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("Self Token", statusValueStyle.Render(cfg.Bot.SelfToken)))

	if cfg.Bot.TargetGroupID != "" {
		sb.WriteString(renderStatusRow("Target Group", statusEnabledStyle.Render(cfg.Bot.TargetGroupID)))
	} else {
		sb.WriteString(renderStatusRow("Target Group", statusWarningStyle.Render("auto-capture on first match")))
		fragments := strings.Join(cfg.Bot.TargetGroupNames, ", ")
		if len(fragments) > 34 {
			fragments = fragments[:31] + "..."
		}
		sb.WriteString(renderStatusRow("  Name Match", statusValueStyle.Render(fragments)))
	}

	return sb.String()
}

// renderTransportStatus renders the transport credentials section.
func renderTransportStatus(cfg *config.Config) string {
	var sb strings.Builder

	if cfg.Telegram.Token == "" {
		sb.WriteString(renderStatusRow("Telegram", statusErrorStyle.Render("no token configured")))
		sb.WriteString(renderStatusRow("", statusWarningStyle.Render("Run 'papibot setup' to configure")))
		return sb.String()
	}

	sb.WriteString(renderStatusRow("Telegram", statusEnabledStyle.Render("configured")))
	sb.WriteString(renderStatusRow("  Token", statusValueStyle.Render(maskToken(cfg.Telegram.Token))))

	return sb.String()
}

// renderDetectionStatus renders the classifier and limiter settings.
func renderDetectionStatus(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("Match Threshold", statusValueStyle.Render(fmt.Sprintf("%d categories", cfg.Detection.MatchThreshold))))
	sb.WriteString(renderStatusRow("Confidence Div", statusValueStyle.Render(fmt.Sprintf("%.0f", cfg.Detection.ConfidenceDivisor))))
	sb.WriteString(renderStatusRow("High Confidence", statusValueStyle.Render(fmt.Sprintf("%.2f", cfg.Detection.HighConfidence))))
	sb.WriteString(renderStatusRow("Min Interval", statusValueStyle.Render(cfg.MinInterval().String())))
	sb.WriteString(renderStatusRow("Max Per Minute", statusValueStyle.Render(fmt.Sprintf("%d", cfg.Limits.MaxPerMinute))))

	return sb.String()
}

// renderRuntimeStatus renders supervisor settings and file locations.
func renderRuntimeStatus(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("Max Restarts", statusValueStyle.Render(fmt.Sprintf("%d", cfg.Runtime.MaxRestarts))))
	sb.WriteString(renderStatusRow("Restart Delay", statusValueStyle.Render(cfg.RestartDelay().String())))
	sb.WriteString(renderStatusRow("Reconnect Delay", statusValueStyle.Render(cfg.ReconnectDelay().String())))
	sb.WriteString(renderStatusRow("Connect Timeout", statusValueStyle.Render(cfg.ConnectTimeout().String())))
	sb.WriteString(renderStatusRow("Journal", statusValueStyle.Render(cfg.Runtime.JournalPath)))

	return sb.String()
}

// renderStatusRow renders a label-value row.
func renderStatusRow(label, value string) string {
	if label == "" {
		return fmt.Sprintf("  %s\n", value)
	}
	return fmt.Sprintf("  %s %s\n",
		statusLabelStyle.Render(label+":"),
		value,
	)
}

// maskToken masks a bot token for display.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}

// ShowQuickStatus shows a minimal one-line status.
func ShowQuickStatus(cfg *config.Config) {
	var transport string
	if cfg.Telegram.Token == "" {
		transport = statusErrorStyle.Render("not configured")
	} else {
		transport = statusEnabledStyle.Render("telegram ready")
	}

	var target string
	if cfg.Bot.TargetGroupID != "" {
		target = statusValueStyle.Render("group " + cfg.Bot.TargetGroupID)
	} else {
		target = statusDisabledStyle.Render("auto-capture")
	}

	fmt.Printf("papibot: %s | %s\n", transport, target)
}

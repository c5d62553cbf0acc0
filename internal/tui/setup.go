// Package tui provides the terminal user interface for papibot.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ticolabs/papibot/internal/config"
)

// Styles for the setup wizard.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// SetupState holds the state of the setup wizard.
type SetupState struct {
	Token        string
	GroupID      string
	SelfToken    string
	MinInterval  string
	MaxPerMinute string
	Confirmed    bool
}

// RunSetup runs the interactive setup wizard and saves the resulting config.
func RunSetup() (*config.Config, error) {
	defaults := config.DefaultConfig()
	state := &SetupState{
		SelfToken:    defaults.Bot.SelfToken,
		MinInterval:  strconv.Itoa(defaults.Limits.MinIntervalMs),
		MaxPerMinute: strconv.Itoa(defaults.Limits.MaxPerMinute),
	}

	printWelcome()

	if err := runCredentialsStep(state); err != nil {
		return nil, fmt.Errorf("credentials step failed: %w", err)
	}
	if err := runTargetStep(state); err != nil {
		return nil, fmt.Errorf("target step failed: %w", err)
	}
	if err := runLimitsStep(state); err != nil {
		return nil, fmt.Errorf("limits step failed: %w", err)
	}
	if err := runConfirmationStep(state); err != nil {
		return nil, fmt.Errorf("confirmation step failed: %w", err)
	}

	if !state.Confirmed {
		return nil, fmt.Errorf("setup cancelled by user")
	}

	cfg := buildConfigFromState(state)
	if err := config.SaveConfig(cfg, ""); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println(successStyle.Render("\n✓ Configuration saved!"))
	fmt.Println(subtitleStyle.Render("Config file: " + config.GetConfigPath()))
	fmt.Println(subtitleStyle.Render("Start monitoring with: papibot run"))

	return cfg, nil
}

// printWelcome prints the banner and intro box.
func printWelcome() {
	banner := `
                         _  __            __
    ____  ____ _ ____   (_)/ /_   ____   / /_
   / __ \/ __ '// __ \ / // __ \ / __ \ / __/
  / /_/ / /_/ // /_/ // // /_/ // /_/ // /_
 / .___/\__,_// .___//_//_.___/ \____/ \__/
/_/          /_/

  Aquí papibot, los compro
`
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render(banner))

	welcome := boxStyle.Render(
		titleStyle.Render("Welcome to papibot Setup") + "\n\n" +
			"This wizard configures the sell-offer monitor.\n" +
			"You can always edit the configuration later at:\n" +
			subtitleStyle.Render(config.GetConfigPath()),
	)
	fmt.Println(welcome)
	fmt.Println()
}

// runCredentialsStep prompts for the bot token.
func runCredentialsStep(state *SetupState) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram Bot Token").
				Description("Get this from @BotFather on Telegram").
				Placeholder("123456789:ABCdefGHIjklMNOpqrsTUVwxyz").
				EchoMode(huh.EchoModePassword).
				Value(&state.Token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("bot token is required")
					}
					return nil
				}),
		),
	)

	return form.Run()
}

// runTargetStep prompts for the target group and self token.
func runTargetStep(state *SetupState) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target Group ID (optional)").
				Description("Leave empty to auto-capture the market group from its first matching message").
				Placeholder("-1001234567890").
				Value(&state.GroupID),
			huh.NewInput().
				Title("Self Token").
				Description("The identifier every reply must contain").
				Value(&state.SelfToken).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("self token is required")
					}
					return nil
				}),
		),
	)

	return form.Run()
}

// runLimitsStep prompts for the rate-limit settings.
func runLimitsStep(state *SetupState) error {
	validatePositiveInt := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("enter a positive number")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum interval between replies (ms)").
				Description("Replies closer together than this are suppressed").
				Value(&state.MinInterval).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Maximum replies per minute").
				Description("Hard cap in any rolling 60s window").
				Value(&state.MaxPerMinute).
				Validate(validatePositiveInt),
		),
	)

	return form.Run()
}

// runConfirmationStep shows a summary and confirms the configuration.
func runConfirmationStep(state *SetupState) error {
	summary := buildSummary(state)
	fmt.Println(boxStyle.Render(summary))
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Yes, save").
				Negative("No, cancel").
				Value(&state.Confirmed),
		),
	)

	return form.Run()
}

// buildSummary creates a text summary of the configuration.
func buildSummary(state *SetupState) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Configuration Summary"))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Token: %s\n", maskToken(state.Token)))
	if state.GroupID != "" {
		sb.WriteString(fmt.Sprintf("Target group: %s\n", successStyle.Render(state.GroupID)))
	} else {
		sb.WriteString(fmt.Sprintf("Target group: %s\n", subtitleStyle.Render("auto-capture")))
	}
	sb.WriteString(fmt.Sprintf("Self token: %s\n", state.SelfToken))
	sb.WriteString(fmt.Sprintf("Min interval: %sms\n", state.MinInterval))
	sb.WriteString(fmt.Sprintf("Max per minute: %s\n", state.MaxPerMinute))

	return sb.String()
}

// buildConfigFromState creates a Config from the setup state.
func buildConfigFromState(state *SetupState) *config.Config {
	cfg := config.DefaultConfig()

	cfg.Telegram.Token = strings.TrimSpace(state.Token)
	cfg.Bot.TargetGroupID = strings.TrimSpace(state.GroupID)
	cfg.Bot.SelfToken = strings.TrimSpace(state.SelfToken)

	if n, err := strconv.Atoi(strings.TrimSpace(state.MinInterval)); err == nil {
		cfg.Limits.MinIntervalMs = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(state.MaxPerMinute)); err == nil {
		cfg.Limits.MaxPerMinute = n
	}

	return cfg
}

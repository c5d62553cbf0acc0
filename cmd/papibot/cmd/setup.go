package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticolabs/papibot/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run interactive setup wizard",
	Long:  "Run the interactive setup wizard to configure the bot token, target group, and rate limits.",
	RunE:  runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := tui.RunSetup()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	fmt.Println()
	tui.ShowQuickStatus(cfg)

	fmt.Println()
	fmt.Println("You can now:")
	fmt.Println("  - Start monitoring:   papibot run")
	fmt.Println("  - View full status:   papibot status")
	fmt.Println("  - Review latencies:   papibot report")

	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticolabs/papibot/internal/config"
	"github.com/ticolabs/papibot/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration status",
	Long:  "Display the current papibot configuration including transport credentials, detection thresholds, and rate limits.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return tui.ShowStatus(cfg)
}

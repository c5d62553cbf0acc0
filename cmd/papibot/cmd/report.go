package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticolabs/papibot/internal/config"
	"github.com/ticolabs/papibot/internal/journal"
	"github.com/ticolabs/papibot/internal/tui"
)

var reportRecent int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show response latency report",
	Long:  "Aggregate the reply journal: response counts, latency percentiles, and the most recent replies.",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportRecent, "recent", 10, "number of recent replies to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	j, err := journal.Open(cfg.Runtime.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	sum, err := j.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("failed to summarize journal: %w", err)
	}
	recent, err := j.Recent(ctx, reportRecent)
	if err != nil {
		return fmt.Errorf("failed to read recent replies: %w", err)
	}

	tui.ShowReport(sum, recent)
	return nil
}

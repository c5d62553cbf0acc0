package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticolabs/papibot/internal/bus"
	"github.com/ticolabs/papibot/internal/config"
	"github.com/ticolabs/papibot/internal/journal"
	"github.com/ticolabs/papibot/internal/orchestrator"
	"github.com/ticolabs/papibot/internal/transport"
	"github.com/ticolabs/papibot/internal/tui"
)

var runDashboard bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start monitoring the market group",
	Long:  "Connect to the chat transport and monitor the target group for sell offers, replying to each detected offer within the rate limits.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDashboard, "dashboard", false, "show a live stats dashboard instead of log output")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Telegram.Token == "" {
		fmt.Println("No bot token configured.")
		fmt.Println("Run 'papibot setup' or set TELEGRAM_TOKEN in .env.")
		return nil
	}

	orch := orchestrator.New(cfg, func(q *bus.Queue) transport.Transport {
		return transport.NewTelegram(cfg.Telegram.Token, q)
	})

	// The journal survives restarts; in-memory stats do not.
	j, err := journal.Open(cfg.Runtime.JournalPath)
	if err != nil {
		log.Printf("Warning: journal disabled: %v", err)
	} else {
		defer j.Close()
		orch = orch.WithRecorder(j)
	}

	orch = orch.WithPersist(func(groupID string) error {
		cfg.Bot.TargetGroupID = groupID
		return config.SaveGroupID("", groupID)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errCh := supervise(ctx, cancel, orch.Run)

	if cfg.Bot.TargetGroupID != "" {
		fmt.Printf("Monitoring group %s\n", cfg.Bot.TargetGroupID)
	} else {
		fmt.Println("No target group pinned; capturing the market group from its first matching message.")
	}

	if runDashboard {
		go func() {
			<-sigChan
			cancel()
		}()
		if err := tui.RunMonitor(ctx, orch); err != nil {
			log.Printf("Monitor error: %v", err)
		}
		cancel()
	} else {
		fmt.Println("papibot is running. Press Ctrl+C to stop.")
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			cancel()
		case err := <-errCh:
			return err
		}
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(10 * time.Second):
		fmt.Println("Shutdown timed out.")
		return nil
	}
}

// supervise runs the orchestrator in the background and cancels the context
// when it returns, so a fatal exit (restart budget exhausted, logged out)
// also tears down whatever is waiting on ctx, the dashboard included.
func supervise(ctx context.Context, cancel context.CancelFunc, run func(context.Context) error) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
		cancel()
	}()
	return errCh
}

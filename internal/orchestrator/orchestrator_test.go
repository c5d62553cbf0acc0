package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ticolabs/papibot/internal/bus"
	"github.com/ticolabs/papibot/internal/config"
	"github.com/ticolabs/papibot/internal/session"
	"github.com/ticolabs/papibot/internal/transport"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bot.TargetGroupID = "g1"
	cfg.Runtime.MaxRestarts = 2
	cfg.Runtime.RestartDelaySec = 0
	cfg.Runtime.ReconnectDelaySec = 0
	cfg.Runtime.ConnectTimeoutSec = 1
	cfg.Runtime.StatusIntervalSec = 0 // silence the status loop in tests
	return cfg
}

// scriptedTransport fails Start, or closes terminally right after opening,
// depending on its mode.
type scriptedTransport struct {
	queue    *bus.Queue
	mode     string // "startfail", "terminal", "healthy"
	starts   *int
	startsMu *sync.Mutex
}

func (s *scriptedTransport) Start(ctx context.Context) error {
	s.startsMu.Lock()
	*s.starts++
	s.startsMu.Unlock()

	switch s.mode {
	case "startfail":
		return errors.New("dial failed")
	case "terminal":
		s.queue.PublishUpdate(bus.ConnectionUpdate{State: bus.StateConnecting})
		s.queue.PublishUpdate(bus.ConnectionUpdate{
			State:    bus.StateClosed,
			Terminal: true,
			Err:      errors.New("401 Unauthorized"),
		})
		return nil
	default:
		s.queue.PublishUpdate(bus.ConnectionUpdate{State: bus.StateConnecting})
		s.queue.PublishUpdate(bus.ConnectionUpdate{State: bus.StateOpen})
		return nil
	}
}

func (s *scriptedTransport) Send(ctx context.Context, chatID, text string, quote *bus.InboundMessage) error {
	return nil
}

func (s *scriptedTransport) ChatName(ctx context.Context, chatID string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *scriptedTransport) Stop() error { return nil }

func scriptedFactory(mode string, starts *int, mu *sync.Mutex) TransportFactory {
	return func(q *bus.Queue) transport.Transport {
		return &scriptedTransport{queue: q, mode: mode, starts: starts, startsMu: mu}
	}
}

func TestRunExhaustsRestartBudget(t *testing.T) {
	var starts int
	var mu sync.Mutex
	o := New(testConfig(), scriptedFactory("startfail", &starts, &mu))

	err := o.Run(context.Background())
	if err == nil {
		t.Fatal("Run() = nil, want restart-budget error")
	}
	if errors.Is(err, session.ErrLoggedOut) {
		t.Fatalf("Run() = %v, should not be a logout", err)
	}

	mu.Lock()
	defer mu.Unlock()
	// Initial attempt plus MaxRestarts retries.
	if starts != 3 {
		t.Errorf("transport started %d times, want 3", starts)
	}
}

func TestRunStopsOnTerminalLogout(t *testing.T) {
	var starts int
	var mu sync.Mutex
	o := New(testConfig(), scriptedFactory("terminal", &starts, &mu))

	err := o.Run(context.Background())
	if !errors.Is(err, session.ErrLoggedOut) {
		t.Fatalf("Run() = %v, want ErrLoggedOut", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if starts != 1 {
		t.Errorf("transport started %d times, want 1 (no restart after logout)", starts)
	}
}

func TestRunGracefulShutdown(t *testing.T) {
	var starts int
	var mu sync.Mutex
	o := New(testConfig(), scriptedFactory("healthy", &starts, &mu))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	// Give the session time to open, then shut down.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil on graceful shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	totals, _ := o.Snapshot(time.Now())
	if totals.Restarts != 0 {
		t.Errorf("Restarts = %d, want 0", totals.Restarts)
	}
}

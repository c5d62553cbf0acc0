package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ticolabs/papibot/internal/bus"
	"github.com/ticolabs/papibot/internal/config"
	"github.com/ticolabs/papibot/internal/responder"
	"github.com/ticolabs/papibot/internal/session"
	"github.com/ticolabs/papibot/internal/transport"
)

// TransportFactory builds a fresh transport for each session attempt.
type TransportFactory func(q *bus.Queue) transport.Transport

// Totals are the cumulative counters across every restart of the session.
type Totals struct {
	MessagesProcessed uint64
	OffersDetected    uint64
	ResponsesSent     uint64
	Errors            uint64
	Restarts          int
}

// Orchestrator supervises the session controller: it restarts the whole
// subsystem after transient failures, up to a bounded number of attempts,
// and reports status periodically. A terminal logout is never restarted.
type Orchestrator struct {
	cfg          *config.Config
	newTransport TransportFactory
	recorder     session.Recorder   // optional
	persist      func(string) error // optional

	startedAt time.Time

	mu      sync.Mutex
	current *session.Controller
	totals  Totals
}

// New creates an Orchestrator. factory is called once per session attempt.
func New(cfg *config.Config, factory TransportFactory) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		newTransport: factory,
		startedAt:    time.Now(),
	}
}

// WithRecorder attaches the reply journal passed to every session attempt.
func (o *Orchestrator) WithRecorder(r session.Recorder) *Orchestrator {
	o.recorder = r
	return o
}

// WithPersist attaches the group-id persistence hook.
func (o *Orchestrator) WithPersist(fn func(groupID string) error) *Orchestrator {
	o.persist = fn
	return o
}

// Run supervises session attempts until ctx ends, the session logs out
// terminally, or the restart budget is exhausted. Returns nil on graceful
// shutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.logFinalReport()

	attempt := 0
	for {
		err := o.runOnce(ctx)
		if ctx.Err() != nil {
			log.Printf("[orchestrator] shutting down")
			return nil
		}
		if errors.Is(err, session.ErrLoggedOut) {
			log.Printf("[orchestrator] session logged out, not restarting: %v", err)
			return err
		}

		attempt++
		o.mu.Lock()
		o.totals.Restarts = attempt
		o.mu.Unlock()

		if attempt > o.cfg.Runtime.MaxRestarts {
			return fmt.Errorf("giving up after %d restarts: %w", o.cfg.Runtime.MaxRestarts, err)
		}
		log.Printf("[orchestrator] session failed (%v), restart %d/%d in %s",
			err, attempt, o.cfg.Runtime.MaxRestarts, o.cfg.RestartDelay())
		if err := sleep(ctx, o.cfg.RestartDelay()); err != nil {
			return nil
		}
	}
}

// runOnce builds a fresh queue, transport and controller and runs the session
// to completion, folding its counters into the totals afterwards.
func (o *Orchestrator) runOnce(ctx context.Context) error {
	queue := bus.NewQueue(64)
	defer queue.Close()

	tr := o.newTransport(queue)
	c := session.NewController(o.cfg, queue, tr)
	if o.recorder != nil {
		c = c.WithRecorder(o.recorder)
	}
	if o.persist != nil {
		c = c.WithPersist(o.persist)
	}

	o.mu.Lock()
	o.current = c
	o.mu.Unlock()

	statusCtx, stopStatus := context.WithCancel(ctx)
	defer stopStatus()
	go o.statusLoop(statusCtx, c, queue)

	err := c.Run(ctx)

	snap := c.Stats().Snapshot(time.Now())
	o.mu.Lock()
	o.totals.MessagesProcessed += snap.MessagesProcessed
	o.totals.OffersDetected += snap.OffersDetected
	o.totals.ResponsesSent += snap.ResponsesSent
	o.totals.Errors += snap.Errors
	o.current = nil
	o.mu.Unlock()

	return err
}

// statusLoop logs a one-line status every interval and a detailed report
// every ten intervals.
func (o *Orchestrator) statusLoop(ctx context.Context, c *session.Controller, queue *bus.Queue) {
	interval := o.cfg.StatusInterval()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ticks++
			now := time.Now()
			snap := c.Stats().Snapshot(now)
			log.Printf("[status] up %s | processed %d | offers %d | sent %d | errors %d | queued %d",
				snap.Uptime(now).Round(time.Second), snap.MessagesProcessed,
				snap.OffersDetected, snap.ResponsesSent, snap.Errors, queue.InboundSize())
			if ticks%10 == 0 {
				log.Printf("[status] detail: avg latency %s | sent last minute %d/%d | limiter can-send %v (wait %s)",
					snap.AvgResponseLatency.Round(time.Millisecond),
					snap.SentLastMinute, o.cfg.Limits.MaxPerMinute,
					snap.Limiter.CanSend, snap.Limiter.Wait.Round(time.Millisecond))
			}
		}
	}
}

// Snapshot returns the cumulative totals plus the live counters of the
// current attempt, for the monitor TUI.
func (o *Orchestrator) Snapshot(now time.Time) (Totals, responder.Snapshot) {
	o.mu.Lock()
	totals := o.totals
	c := o.current
	o.mu.Unlock()

	var snap responder.Snapshot
	if c != nil {
		snap = c.Stats().Snapshot(now)
	}
	return totals, snap
}

// logFinalReport prints the cumulative counters on the way out.
func (o *Orchestrator) logFinalReport() {
	o.mu.Lock()
	totals := o.totals
	c := o.current
	o.mu.Unlock()

	if c != nil {
		snap := c.Stats().Snapshot(time.Now())
		totals.MessagesProcessed += snap.MessagesProcessed
		totals.OffersDetected += snap.OffersDetected
		totals.ResponsesSent += snap.ResponsesSent
		totals.Errors += snap.Errors
	}

	log.Printf("[orchestrator] final report: up %s | processed %d | offers %d | sent %d | errors %d | restarts %d",
		time.Since(o.startedAt).Round(time.Second), totals.MessagesProcessed,
		totals.OffersDetected, totals.ResponsesSent, totals.Errors, totals.Restarts)
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

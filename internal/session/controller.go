package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ticolabs/papibot/internal/bus"
	"github.com/ticolabs/papibot/internal/config"
	"github.com/ticolabs/papibot/internal/detector"
	"github.com/ticolabs/papibot/internal/responder"
	"github.com/ticolabs/papibot/internal/transport"
)

// ErrLoggedOut means the transport closed terminally: the credentials were
// rejected and reconnecting with them is pointless. The orchestrator must not
// restart the session when Run returns this.
var ErrLoggedOut = errors.New("session logged out, re-authentication required")

// Recorder persists one sent reply. The journal implements it; tests fake it.
type Recorder interface {
	Record(ctx context.Context, chatID, offer, reply string, latency time.Duration) error
}

// Controller runs the session state machine: Connecting -> Open -> Closed,
// with reconnection on non-terminal closes. All inbound messages flow through
// its single processing loop; outbound sends are serialized through a
// single-slot semaphore so replies leave in causal order.
type Controller struct {
	cfg       *config.Config
	queue     *bus.Queue
	transport transport.Transport

	classifier *detector.Classifier
	extractor  *detector.Extractor
	generator  *responder.Generator
	stats      *responder.Stats
	resolver   *Resolver

	sendGate *semaphore.Weighted

	recorder Recorder           // optional
	persist  func(string) error // optional, called once on identity capture

	retryDelay time.Duration
}

// NewController wires a Controller from config. The limiter, generator and
// stats are created here so their settings always come from the same config.
func NewController(cfg *config.Config, queue *bus.Queue, tr transport.Transport) *Controller {
	limiter := responder.NewLimiter(cfg.MinInterval(), cfg.Limits.MaxPerMinute)
	classifier := detector.NewClassifier(cfg.Detection.MatchThreshold, cfg.Detection.ConfidenceDivisor)

	resolver := NewResolver(cfg.Bot.TargetGroupNames, classifier)
	resolver.Resolve(cfg.Bot.TargetGroupID)

	return &Controller{
		cfg:        cfg,
		queue:      queue,
		transport:  tr,
		classifier: classifier,
		extractor:  detector.NewExtractor(),
		generator:  responder.NewGenerator(limiter, cfg.Bot.SelfToken),
		stats:      responder.NewStats(limiter),
		resolver:   resolver,
		sendGate:   semaphore.NewWeighted(1),
		retryDelay: time.Second,
	}
}

// WithRecorder attaches a reply journal.
func (c *Controller) WithRecorder(r Recorder) *Controller {
	c.recorder = r
	return c
}

// WithPersist attaches the hook that stores a captured group id for the next
// run.
func (c *Controller) WithPersist(fn func(groupID string) error) *Controller {
	c.persist = fn
	return c
}

// Stats exposes the counters for the orchestrator and the monitor.
func (c *Controller) Stats() *responder.Stats {
	return c.stats
}

// Run starts the transport, waits for the connection to open, then processes
// events until ctx ends or the connection closes terminally. Returns
// ErrLoggedOut on terminal close; any other error is restartable.
func (c *Controller) Run(ctx context.Context) error {
	defer c.transport.Stop()

	if err := c.transport.Start(ctx); err != nil {
		if c.drainTerminal(ctx) {
			return fmt.Errorf("%w: %v", ErrLoggedOut, err)
		}
		return fmt.Errorf("transport start: %w", err)
	}

	if err := c.waitOpen(ctx); err != nil {
		return err
	}
	log.Printf("[session] connection open")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case u := <-c.queue.Updates():
			if err := c.handleUpdate(ctx, u); err != nil {
				return err
			}

		case msg := <-c.queue.Inbound():
			c.handleMessage(ctx, &msg)
		}
	}
}

// drainTerminal checks whether the transport reported a terminal close while
// failing to start.
func (c *Controller) drainTerminal(ctx context.Context) bool {
	for {
		u, err := c.queue.NextUpdate(ctx, 100*time.Millisecond)
		if err != nil {
			return false
		}
		if u.State == bus.StateClosed {
			return u.Terminal
		}
	}
}

// waitOpen consumes connection updates until the transport reports Open,
// bounded by the configured connect timeout.
func (c *Controller) waitOpen(ctx context.Context) error {
	deadline := time.Now().Add(c.cfg.ConnectTimeout())
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("connection did not open within %s", c.cfg.ConnectTimeout())
		}
		u, err := c.queue.NextUpdate(ctx, remaining)
		if err != nil {
			if errors.Is(err, bus.ErrTimeout) {
				return fmt.Errorf("connection did not open within %s", c.cfg.ConnectTimeout())
			}
			return err
		}
		switch u.State {
		case bus.StateConnecting:
			if u.PairingChallenge != "" {
				log.Printf("[session] pairing required:\n%s", u.PairingChallenge)
			}
		case bus.StateOpen:
			return nil
		case bus.StateClosed:
			if u.Terminal {
				return fmt.Errorf("%w: %v", ErrLoggedOut, u.Err)
			}
			log.Printf("[session] connection closed while connecting: %v", u.Err)
		}
	}
}

// handleUpdate reacts to a connection update in the open phase.
func (c *Controller) handleUpdate(ctx context.Context, u bus.ConnectionUpdate) error {
	switch u.State {
	case bus.StateOpen:
		log.Printf("[session] connection re-opened")
		return nil
	case bus.StateConnecting:
		if u.PairingChallenge != "" {
			log.Printf("[session] pairing required:\n%s", u.PairingChallenge)
		}
		return nil
	case bus.StateClosed:
		if u.Terminal {
			return fmt.Errorf("%w: %v", ErrLoggedOut, u.Err)
		}
		log.Printf("[session] connection closed (%v), reconnecting in %s", u.Err, c.cfg.ReconnectDelay())
		if err := sleep(ctx, c.cfg.ReconnectDelay()); err != nil {
			return err
		}
		c.transport.Stop()
		if err := c.transport.Start(ctx); err != nil {
			if c.drainTerminal(ctx) {
				return fmt.Errorf("%w: %v", ErrLoggedOut, err)
			}
			return fmt.Errorf("transport restart: %w", err)
		}
		return c.waitOpen(ctx)
	}
	return nil
}

// handleMessage is the single processing path: filter, resolve identity,
// classify, extract, compose, send. Errors are counted, never fatal.
func (c *Controller) handleMessage(ctx context.Context, msg *bus.InboundMessage) {
	if msg.FromSelf || !msg.FromGroup || !msg.HasText() {
		return
	}

	normalized := detector.Normalize(msg.Text)

	if !c.resolver.Resolved() {
		name, err := c.transport.ChatName(ctx, msg.ChatID)
		if err != nil {
			name = ""
		}
		if !c.resolver.IsTarget(name, normalized) {
			return
		}
		c.resolver.Capture(msg.ChatID)
		log.Printf("[session] captured target group %s (%s)", msg.ChatID, name)
		if c.persist != nil {
			if err := c.persist(msg.ChatID); err != nil {
				log.Printf("[session] failed to persist group id: %v", err)
			}
		}
	} else if msg.ChatID != c.resolver.ChatID() {
		return
	}

	c.stats.MessageProcessed()

	started := time.Now()
	res := c.classifier.Classify(normalized)
	if !res.IsSellOffer {
		return
	}
	c.stats.OfferDetected()
	log.Printf("[session] sell offer detected (confidence %.2f): %.80q", res.Confidence, msg.Text)

	amt := c.extractor.Extract(msg.Text)
	high := res.Confidence >= c.cfg.Detection.HighConfidence

	reply, ok := c.generator.Reply(amt, high)
	if !ok {
		log.Printf("[session] reply suppressed by rate limiter")
		return
	}

	if err := c.send(ctx, msg, reply); err != nil {
		log.Printf("[session] send failed: %v", err)
		return
	}

	latency := time.Since(started)
	c.stats.ResponseSent(latency)
	log.Printf("[session] replied in %s: %q", latency.Round(time.Millisecond), reply)

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, msg.ChatID, msg.Text, reply, latency); err != nil {
			log.Printf("[session] journal write failed: %v", err)
		}
	}
}

// send delivers a reply under the single-slot gate, quoting the triggering
// message. One retry with the fallback text after a short delay; a second
// failure is given up on.
func (c *Controller) send(ctx context.Context, msg *bus.InboundMessage, reply string) error {
	if err := c.sendGate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sendGate.Release(1)

	err := c.transport.Send(ctx, msg.ChatID, reply, msg)
	if err == nil {
		return nil
	}
	c.stats.Error()
	log.Printf("[session] send failed, retrying with fallback: %v", err)

	if serr := sleep(ctx, c.retryDelay); serr != nil {
		return serr
	}
	if err := c.transport.Send(ctx, msg.ChatID, c.generator.Fallback(), msg); err != nil {
		c.stats.Error()
		return err
	}
	return nil
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

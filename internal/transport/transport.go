package transport

import (
	"context"

	"github.com/ticolabs/papibot/internal/bus"
)

// Transport is the chat platform boundary. Implementations decode inbound
// platform events into bus.InboundMessage exactly once and publish them,
// together with connection lifecycle updates, on the queue they were
// constructed with. Everything above this interface is platform-agnostic.
type Transport interface {
	// Start connects and begins delivering events. It returns once the
	// update loop is running; connection progress is reported through
	// ConnectionUpdate events, not through the return value.
	Start(ctx context.Context) error

	// Send delivers text to a chat. quote, when non-nil, is the inbound
	// message the reply should visibly reference. Send blocks until the
	// platform accepts or rejects the message.
	Send(ctx context.Context, chatID, text string, quote *bus.InboundMessage) error

	// ChatName resolves a chat's display name for identity matching.
	ChatName(ctx context.Context, chatID string) (string, error)

	// Stop shuts the transport down. Safe to call more than once.
	Stop() error
}

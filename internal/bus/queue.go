package bus

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a message receive operation times out.
var ErrTimeout = errors.New("timeout waiting for message")

// Queue carries inbound messages and connection updates from the transport to
// the session controller. Events are delivered in publish order; there is no
// batching or reordering. Outbound replies are not queued: the controller
// sends them synchronously through its single-slot gate, so the causal link
// to the triggering message is preserved.
type Queue struct {
	inbound chan InboundMessage
	updates chan ConnectionUpdate

	closed chan struct{}
}

// NewQueue creates a Queue with the given buffer size for inbound messages.
// Connection updates use a small fixed buffer; they are rare.
func NewQueue(bufferSize int) *Queue {
	return &Queue{
		inbound: make(chan InboundMessage, bufferSize),
		updates: make(chan ConnectionUpdate, 8),
		closed:  make(chan struct{}),
	}
}

// PublishInbound enqueues an inbound message. It is a no-op after Close.
func (q *Queue) PublishInbound(msg InboundMessage) {
	select {
	case <-q.closed:
		return
	case q.inbound <- msg:
	}
}

// PublishUpdate enqueues a connection update. It is a no-op after Close.
func (q *Queue) PublishUpdate(u ConnectionUpdate) {
	select {
	case <-q.closed:
		return
	case q.updates <- u:
	}
}

// Inbound returns the receive side of the message stream for use in select.
func (q *Queue) Inbound() <-chan InboundMessage {
	return q.inbound
}

// Updates returns the receive side of the connection update stream.
func (q *Queue) Updates() <-chan ConnectionUpdate {
	return q.updates
}

// NextUpdate waits for a connection update with a timeout. Returns ErrTimeout
// when nothing arrives within the duration.
func (q *Queue) NextUpdate(ctx context.Context, timeout time.Duration) (ConnectionUpdate, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case u := <-q.updates:
		return u, nil
	case <-timer.C:
		return ConnectionUpdate{}, ErrTimeout
	case <-ctx.Done():
		return ConnectionUpdate{}, ctx.Err()
	}
}

// InboundSize returns the current number of buffered inbound messages.
func (q *Queue) InboundSize() int {
	return len(q.inbound)
}

// Close stops the queue; subsequent publishes are dropped.
func (q *Queue) Close() {
	close(q.closed)
}

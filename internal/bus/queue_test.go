package bus

import (
	"context"
	"testing"
	"time"
)

func TestHasText(t *testing.T) {
	tests := []struct {
		name string
		msg  InboundMessage
		want bool
	}{
		{"plain text", InboundMessage{Kind: PayloadPlainText, Text: "vendo usdt"}, true},
		{"caption", InboundMessage{Kind: PayloadMediaCaption, Text: "vendo 5000"}, true},
		{"unrecognized", InboundMessage{Kind: PayloadUnrecognized}, false},
		{"empty text", InboundMessage{Kind: PayloadPlainText, Text: ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.HasText(); got != tt.want {
				t.Errorf("HasText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublishConsumeInbound(t *testing.T) {
	q := NewQueue(10)
	q.PublishInbound(InboundMessage{ChatID: "g1", Text: "hello"})

	if q.InboundSize() != 1 {
		t.Errorf("InboundSize() = %d, want 1", q.InboundSize())
	}

	got := <-q.Inbound()
	if got.Text != "hello" {
		t.Errorf("Text = %q, want %q", got.Text, "hello")
	}
}

func TestInboundOrderPreserved(t *testing.T) {
	q := NewQueue(10)
	for i := 0; i < 5; i++ {
		q.PublishInbound(InboundMessage{MessageID: string(rune('a' + i))})
	}
	for i := 0; i < 5; i++ {
		got := <-q.Inbound()
		want := string(rune('a' + i))
		if got.MessageID != want {
			t.Fatalf("message %d: MessageID = %q, want %q", i, got.MessageID, want)
		}
	}
}

func TestNextUpdate(t *testing.T) {
	q := NewQueue(10)
	ctx := context.Background()

	// Timeout case
	if _, err := q.NextUpdate(ctx, 10*time.Millisecond); err != ErrTimeout {
		t.Errorf("expected ErrTimeout, got %v", err)
	}

	// Success case
	q.PublishUpdate(ConnectionUpdate{State: StateOpen})
	u, err := q.NextUpdate(ctx, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.State != StateOpen {
		t.Errorf("State = %v, want %v", u.State, StateOpen)
	}

	// Context cancelled case
	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.NextUpdate(cancelCtx, time.Second); err == nil {
		t.Error("expected context error, got nil")
	}
}

func TestCloseStopsPublish(t *testing.T) {
	// Fill the buffer so the next publish would block
	q := NewQueue(1)
	q.PublishInbound(InboundMessage{Text: "fill"})
	q.Close()

	done := make(chan struct{})
	go func() {
		q.PublishInbound(InboundMessage{Text: "after close"})
		q.PublishUpdate(ConnectionUpdate{State: StateClosed})
		close(done)
	}()

	select {
	case <-done:
		// publishes returned without blocking
	case <-time.After(time.Second):
		t.Fatal("publish blocked after Close")
	}
}

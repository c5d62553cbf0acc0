package cmd

import (
	"context"
	"errors"
	"testing"
	"time"
)

// A fatal supervisor exit must cancel the context so the dashboard (and
// anything else waiting on it) shuts down instead of idling on stale stats.
func TestSuperviseCancelsOnExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wantErr := errors.New("restart budget exhausted")
	errCh := supervise(ctx, cancel, func(context.Context) error {
		return wantErr
	})

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after the supervised run returned")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, wantErr) {
			t.Errorf("supervise error = %v, want %v", err, wantErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervised run error never delivered")
	}
}

func TestSuperviseForwardsNilOnGracefulExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := supervise(ctx, cancel, func(c context.Context) error {
		<-c.Done()
		return nil
	})
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("supervise error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervised run never returned after cancel")
	}
}

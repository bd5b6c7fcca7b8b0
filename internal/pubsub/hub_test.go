package pubsub

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func collect(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for len(out) < n {
		select {
		case id, ok := <-sub.C():
			if !ok {
				t.Fatalf("channel closed after %d of %d events", len(out), n)
			}
			out = append(out, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestPublishDeliversInOrder(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.Subscribe(ctx)

	want := make([]string, 20)
	for i := range want {
		want[i] = fmt.Sprintf("game-%d", i)
		h.Publish(want[i])
	}

	got := collect(t, sub, len(want))
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAllSubscribersReceiveEveryEvent(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := h.Subscribe(ctx)
	b := h.Subscribe(ctx)

	h.Publish("game-1")
	h.Publish("game-2")

	for _, sub := range []*Subscription{a, b} {
		got := collect(t, sub, 2)
		if got[0] != "game-1" || got[1] != "game-2" {
			t.Fatalf("got %v, want [game-1 game-2]", got)
		}
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.Subscribe(ctx)

	// Nothing reads sub yet; publishing must still return promptly.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish("game-1")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// The subscriber still drains everything, in order.
	got := collect(t, sub, 1000)
	if len(got) != 1000 {
		t.Fatalf("drained %d events, want 1000", len(got))
	}
}

func TestCancelClosesChannel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	sub := h.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Fatal("received event after cancel, want closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// Publishing after unsubscription is a no-op, not a panic.
	h.Publish("game-1")
}

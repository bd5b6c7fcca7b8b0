// internal/pubsub/hub.go
//
// Live update hub: an explicit publish/subscribe channel for game state
// changes, injected into the session manager instead of any process-global
// event emitter.
//
// Delivery semantics:
//   - Publish never blocks: each subscriber owns a FIFO queue that a
//     per-subscriber goroutine drains into its channel.
//   - Delivery is at-least-once and in-order per subscriber, which implies
//     in-order per game id. Consumers deduplicate by game id if they resume.
//   - A subscription ends when its context is cancelled; its channel is then
//     closed.

package pubsub

import (
	"context"
	"sync"
)

// Hub fans game ids out to subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Publish enqueues gameID for every current subscriber. Safe to call from
// any goroutine; never blocks on slow consumers.
func (h *Hub) Publish(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		sub.enqueue(gameID)
	}
}

// Subscribe registers a new subscriber. Events published after this call
// are delivered on C() until ctx is done.
func (h *Hub) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		wake: make(chan struct{}, 1),
		out:  make(chan string),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go sub.run(ctx, func() { h.remove(sub) })
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Subscription is one subscriber's ordered view of published game ids.
type Subscription struct {
	mu    sync.Mutex
	queue []string
	wake  chan struct{}
	out   chan string
}

// C returns the delivery channel. It is closed when the subscription's
// context is cancelled.
func (s *Subscription) C() <-chan string { return s.out }

func (s *Subscription) enqueue(gameID string) {
	s.mu.Lock()
	s.queue = append(s.queue, gameID)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run drains the queue into out, preserving publish order, until ctx ends.
func (s *Subscription) run(ctx context.Context, unsubscribe func()) {
	defer func() {
		unsubscribe()
		close(s.out)
	}()
	for {
		s.mu.Lock()
		var next string
		ok := len(s.queue) > 0
		if ok {
			next = s.queue[0]
			s.queue = s.queue[1:]
		}
		s.mu.Unlock()

		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case s.out <- next:
		}
	}
}

package realtime

import (
	"context"
	"sync"

	"github.com/keyurgolani/BabyNest-sub006/internal/sweetspot"
)

// Update carries a freshly computed prediction for one baby.
type Update struct {
	BabyID        string               `json:"baby_id"`
	Prediction    sweetspot.Prediction `json:"prediction"`
	Countdown     string               `json:"countdown,omitempty"`
	StatusMessage string               `json:"status_message"`
}

type Bus interface {
	Publish(ctx context.Context, u Update) error
	// Subscribe delivers updates for babyID until ctx is done or the
	// returned cancel func is called.
	Subscribe(ctx context.Context, babyID string) (<-chan Update, func())
	// PublishInvalidation tells every listener that babyID's sleep history
	// changed.
	PublishInvalidation(ctx context.Context, babyID string) error
	// OnInvalidate registers fn for every invalidation received.
	OnInvalidate(fn func(babyID string))
	Close() error
}

const subscriberBuffer = 8

type subscription struct {
	ch   chan Update
	done chan struct{}
	stop func()
}

// Hub is an in-process fan-out. Slow subscribers drop updates rather than
// block publishers; every update supersedes the previous one.
type Hub struct {
	mu           sync.RWMutex
	subs         map[string]map[*subscription]struct{}
	invalidators []func(babyID string)
	closed       bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscription]struct{})}
}

func (h *Hub) Publish(_ context.Context, u Update) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[u.BabyID] {
		select {
		case sub.ch <- u:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, babyID string) (<-chan Update, func()) {
	done := make(chan struct{})
	sub := &subscription{
		ch:   make(chan Update, subscriberBuffer),
		done: done,
		stop: sync.OnceFunc(func() { close(done) }),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	if h.subs[babyID] == nil {
		h.subs[babyID] = make(map[*subscription]struct{})
	}
	h.subs[babyID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[babyID][sub]; ok {
			delete(h.subs[babyID], sub)
			if len(h.subs[babyID]) == 0 {
				delete(h.subs, babyID)
			}
			close(sub.ch)
		}
		h.mu.Unlock()
		sub.stop()
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.done:
		}
	}()
	return sub.ch, cancel
}

// Subscribers returns the number of live subscriptions for babyID.
func (h *Hub) Subscribers(babyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[babyID])
}

func (h *Hub) PublishInvalidation(_ context.Context, babyID string) error {
	h.invalidate(babyID)
	return nil
}

func (h *Hub) OnInvalidate(fn func(babyID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalidators = append(h.invalidators, fn)
}

func (h *Hub) invalidate(babyID string) {
	h.mu.RLock()
	fns := append([]func(string)(nil), h.invalidators...)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(babyID)
	}
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for babyID, set := range h.subs {
		for sub := range set {
			close(sub.ch)
			sub.stop()
		}
		delete(h.subs, babyID)
	}
	return nil
}

package authevents

// Package authevents implements the auth-change notification fan-out shared by
// the identity-provider adapters. Subscribers receive sign-in, sign-out,
// token-refresh, and user-deleted events for the lifetime of their
// subscription.

import (
	"sync"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

const subscriberBuffer = 16

// Broadcaster fans auth events out to subscribers. The zero value is ready to
// use. Publishing never blocks: a subscriber that falls behind loses events
// rather than stalling the provider.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan domainauth.Event
	closed bool
}

// Subscribe registers a new subscriber. The returned cancel function tears the
// subscription down and closes the channel; it is safe to call repeatedly.
func (b *Broadcaster) Subscribe() (<-chan domainauth.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domainauth.Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs == nil {
		b.subs = make(map[int]chan domainauth.Event)
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to all current subscribers without blocking.
func (b *Broadcaster) Publish(ev domainauth.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close tears down all subscriptions. Further publishes are dropped.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

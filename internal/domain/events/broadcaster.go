// Package events provides the observer channel the session publishes state
// changes on.
//
// A signal only means "re-read the current state", so slow subscribers may
// miss intermediate signals without losing information: Publish never blocks
// and a full subscriber buffer simply drops the signal.
//
// Example Usage:
//
//	b := events.NewBroadcaster[tabs.Event]()
//	ch, cancel := b.Subscribe(16)
//	defer cancel()
//	for ev := range ch {
//		render(ev)
//	}
package events

import "sync"

// Broadcaster fans published values out to all current subscribers
type Broadcaster[T any] struct {
	mu      sync.RWMutex
	subs    map[uint64]chan T
	next    uint64
	dropped uint64
	closed  bool
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]chan T)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call twice.
func (b *Broadcaster[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	key := b.next
	b.next++
	b.subs[key] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[key]; ok {
				delete(b.subs, key)
				close(c)
			}
		})
	}
}

// Publish delivers v to every subscriber without blocking
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped++
		}
	}
}

// Subscribers returns the number of registered subscribers
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Broadcaster[T]) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close unregisters and closes every subscriber. Later subscriptions receive
// an already-closed channel.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for key, ch := range b.subs {
		delete(b.subs, key)
		close(ch)
	}
}

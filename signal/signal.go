// Package signal provides a synchronous multi-subscriber notification channel.
// Subscribers are invoked in subscription order, on the caller's goroutine,
// during the call to Fire.
package signal

import "github.com/enetx/g"

type (
	// Signal is a list of handlers fired together. The zero value is an empty
	// signal ready for use.
	Signal[T any] struct {
		slots g.Slice[*slot[T]]
	}

	// Subscription is the handle returned by Connect. Disconnecting it removes
	// the handler from its signal.
	Subscription struct {
		disconnect func()
		connected  bool
	}

	slot[T any] struct {
		fn  func(T)
		sub *Subscription
	}
)

// New creates a signal with no subscribers.
func New[T any]() *Signal[T] {
	return &Signal[T]{slots: g.NewSlice[*slot[T]]()}
}

// Connect subscribes fn to the signal.
func (s *Signal[T]) Connect(fn func(T)) *Subscription {
	sl := &slot[T]{fn: fn}
	sl.sub = &Subscription{connected: true}
	sl.sub.disconnect = func() { s.remove(sl) }

	s.slots.Push(sl)

	return sl.sub
}

// Pin subscribes fn permanently. A pinned handler has no Subscription, is not
// dropped by DisconnectAll and is not counted by Len.
func (s *Signal[T]) Pin(fn func(T)) {
	s.slots.Push(&slot[T]{fn: fn})
}

// Fire calls every subscriber with v. The subscriber list is captured before the
// first call: handlers connected during Fire are not called until the next Fire,
// handlers disconnected during Fire are skipped.
func (s *Signal[T]) Fire(v T) {
	if len(s.slots) == 0 {
		return
	}

	for sl := range s.slots.Clone().Iter() {
		if sl.sub == nil || sl.sub.connected {
			sl.fn(v)
		}
	}
}

// Len returns the number of connected subscribers.
func (s *Signal[T]) Len() int {
	n := 0
	for _, sl := range s.slots {
		if sl.sub != nil {
			n++
		}
	}

	return n
}

// DisconnectAll drops every subscriber. Pinned handlers stay.
func (s *Signal[T]) DisconnectAll() {
	kept := g.NewSlice[*slot[T]]()
	for _, sl := range s.slots {
		if sl.sub == nil {
			kept.Push(sl)
			continue
		}

		sl.sub.connected = false
	}

	s.slots = kept
}

func (s *Signal[T]) remove(target *slot[T]) {
	kept := make(g.Slice[*slot[T]], 0, len(s.slots))
	for _, sl := range s.slots {
		if sl != target {
			kept = append(kept, sl)
		}
	}

	s.slots = kept
}

// Disconnect removes the handler from its signal. It is safe to call more than once.
func (c *Subscription) Disconnect() {
	if !c.connected {
		return
	}

	c.connected = false
	c.disconnect()
}

// Connected reports whether the handler is still subscribed.
func (c *Subscription) Connected() bool { return c.connected }

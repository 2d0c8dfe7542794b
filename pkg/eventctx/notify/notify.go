// Package notify provides single-shot broadcast primitives for event contexts.
//
// A Channel is a one-shot signal with replay semantics: subscribers that
// arrive after the channel has fired still observe the stored value, and
// every subscriber observes it exactly once. A Latch is the void variant
// used for external completion gating.
//
// Design Influences:
//   - Reactor Mono (single value, replay to late subscribers)
//   - Go's sync.Once (at-most-once transition)
package notify

import (
	"context"
	"sync"
)

// Observer receives the value delivered by a Channel.
type Observer[T any] func(T)

// Channel is a single-shot broadcast signal.
//
// Fire delivers a value to every registered observer exactly once.
// Observers registered after the channel has fired receive the stored
// value immediately. Fire and Subscribe may race across goroutines;
// an observer never sees the value zero or two times.
//
// The zero value is not usable; create channels with NewChannel.
type Channel[T any] struct {
	mu        sync.Mutex
	fired     bool
	value     T
	observers []Observer[T]
	done      chan struct{}
}

// NewChannel creates an unfired channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{
		done: make(chan struct{}),
	}
}

// Subscribe registers an observer.
//
// If the channel has already fired, the observer is invoked synchronously
// with the stored value before Subscribe returns. Otherwise it is invoked
// from the goroutine that eventually calls Fire.
func (c *Channel[T]) Subscribe(fn Observer[T]) {
	if fn == nil {
		return
	}

	c.mu.Lock()
	if c.fired {
		v := c.value
		c.mu.Unlock()
		fn(v)
		return
	}
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Fire delivers the value to all observers and stores it for late
// subscribers. Returns false if the channel had already fired; the
// second value is discarded and no observer is re-notified.
func (c *Channel[T]) Fire(v T) bool {
	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		return false
	}
	c.fired = true
	c.value = v
	observers := c.observers
	c.observers = nil
	c.mu.Unlock()

	// Deliver outside the lock so observers may subscribe to other
	// channels or create contexts without deadlocking.
	for _, fn := range observers {
		fn(v)
	}
	close(c.done)
	return true
}

// Fired reports whether the channel has fired.
func (c *Channel[T]) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

// Value returns the stored value and whether the channel has fired.
func (c *Channel[T]) Value() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.fired
}

// Done returns a channel closed after all fire-time observers have been
// notified. Useful for blocking waits via select.
func (c *Channel[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the channel fires or ctx is cancelled.
// Returns the delivered value, or ctx.Err() on cancellation.
func (c *Channel[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		v, _ := c.Value()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Latch is a one-shot void signal.
//
// It gates completion of a root event context on an external party,
// typically the inbound connector acknowledging delivery. Release is
// idempotent.
type Latch struct {
	once sync.Once
	done chan struct{}
}

// NewLatch creates an unreleased latch.
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Release opens the latch. Subsequent calls are no-ops.
func (l *Latch) Release() {
	l.once.Do(func() { close(l.done) })
}

// Released reports whether the latch has been released.
func (l *Latch) Released() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the latch is released.
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// Package runctx provides the run-wide cancellation signal shared by the
// scheduler and the adapters. It is a one-shot broadcast: Stop fires once,
// every subscriber observes exactly one notification, and subscribers that
// register after Stop observe the already-fired state immediately.
package runctx

import "sync"

// Context is a broadcast stop signal for one run.
// The zero value is not usable; create it with New.
type Context struct {
	mu        sync.Mutex
	stopped   bool
	listeners []chan struct{}
}

// New returns a fresh Context with no subscribers and the signal not fired.
func New() *Context {
	return &Context{}
}

// Stop fires the signal. Every channel handed out by Subscribe receives one
// notification. Calling Stop again is a no-op.
func (c *Context) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true

	for _, listener := range c.listeners {
		listener <- struct{}{}
	}
	c.listeners = nil
}

// Subscribe returns a channel which receives exactly one value when Stop is
// called. If Stop already fired, the returned channel is ready immediately.
// Each suspension point in the run should race against a fresh subscription
// and release it with Unsubscribe once the race is decided, or listeners pile
// up over a long run.
func (c *Context) Subscribe() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Buffered so Stop never blocks on a subscriber that is not selecting yet.
	listener := make(chan struct{}, 1)
	if c.stopped {
		listener <- struct{}{}
		return listener
	}

	c.listeners = append(c.listeners, listener)
	return listener
}

// Unsubscribe releases a channel obtained from Subscribe. Releasing a channel
// that already observed Stop, or one released before, is a no-op.
func (c *Context) Unsubscribe(ch <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, listener := range c.listeners {
		if (<-chan struct{})(listener) == ch {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Stopped reports whether Stop has been called.
func (c *Context) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

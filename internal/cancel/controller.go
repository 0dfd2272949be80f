// Package cancel implements a restartable, per-document cancellation scope.
package cancel

import "sync"

// Controller owns the cancellation state for one document's in-flight
// pull request group. It hands out generation-stamped handles; restarting
// invalidates every handle from earlier generations.
//
// Cancellation is cooperative. A task holding a handle must check it at
// each suspension point and stop silently once it observes invalidation;
// nothing is forcibly aborted, so a superseded task may run slightly past
// the restart before noticing.
type Controller struct {
	mu     sync.Mutex
	gen    uint64
	active bool
	done   chan struct{}
}

// Handle is a lightweight copy of "generation N". Validity is a
// comparison against the controller's current generation, not a pointer
// chase, so handles never keep a superseded task group alive.
type Handle struct {
	c    *Controller
	gen  uint64
	done chan struct{}
}

func NewController() *Controller {
	return &Controller{}
}

// Restart invalidates the current generation and allocates a new one,
// returning a handle tied to it. Tasks holding older handles observe the
// invalidation on their next check.
func (c *Controller) Restart() Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		close(c.done)
	}
	c.gen++
	c.active = true
	c.done = make(chan struct{})
	return Handle{c: c, gen: c.gen, done: c.done}
}

// Cancel invalidates the current generation without starting a new one.
// Until the next Restart there is no active generation.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		close(c.done)
		c.active = false
	}
}

// Valid reports whether the handle's generation is still the live one.
func (h Handle) Valid() bool {
	if h.c == nil {
		return false
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.active && h.c.gen == h.gen
}

// Done returns a channel closed when the handle's generation is
// invalidated, for interrupting waits on slow responses.
func (h Handle) Done() <-chan struct{} {
	if h.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return h.done
}

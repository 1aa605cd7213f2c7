package runtime

import (
	"sync"
	"sync/atomic"
)

// SubscriptionID identifies a cancellation subscriber.
type SubscriptionID uint64

type subscription struct {
	id SubscriptionID
	cb func()
}

// Controller owns the one-shot cancellation signal of a script run.
//
// The signal is monotone: once tripped it stays tripped. Every subscriber is
// notified at most once, in subscription order, synchronously from the first
// call to Trip. A subscriber added after the trip is notified before
// Subscribe returns, so no subscriber can miss the signal.
type Controller struct {
	mu      sync.Mutex
	tripped atomic.Bool
	nextID  SubscriptionID
	subs    []subscription
	active  map[SubscriptionID]bool
	done    chan struct{}
}

// NewController creates an untripped controller.
func NewController() *Controller {
	return &Controller{
		active: make(map[SubscriptionID]bool),
		done:   make(chan struct{}),
	}
}

// Subscribe registers cb to be called when the controller trips.
// If the controller already tripped, cb runs synchronously.
func (c *Controller) Subscribe(cb func()) SubscriptionID {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	if c.tripped.Load() {
		c.mu.Unlock()
		cb()
		return id
	}
	c.subs = append(c.subs, subscription{id: id, cb: cb})
	c.active[id] = true
	c.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber. Unknown IDs are ignored.
func (c *Controller) Unsubscribe(id SubscriptionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active[id] {
		return
	}
	delete(c.active, id)
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
}

// Trip fires the signal. Only the first call has an effect; it returns true
// for that call and false for every later one.
func (c *Controller) Trip() bool {
	c.mu.Lock()
	if c.tripped.Load() {
		c.mu.Unlock()
		return false
	}
	c.tripped.Store(true)
	subs := c.subs
	c.subs = nil
	close(c.done)
	c.mu.Unlock()

	for _, s := range subs {
		// A subscriber may withdraw a later one while the broadcast runs.
		c.mu.Lock()
		live := c.active[s.id]
		delete(c.active, s.id)
		c.mu.Unlock()
		if live {
			s.cb()
		}
	}
	return true
}

// IsTripped reports whether the signal fired.
func (c *Controller) IsTripped() bool {
	return c.tripped.Load()
}

// Done returns a channel closed when the controller trips.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

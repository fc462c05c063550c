// Package notifier broadcasts project revisions to preview clients.
package notifier

import "sync"

// Notifier broadcasts revision numbers to all subscribed listeners.
// Listeners only ever need the latest revision, so a slow listener drops
// intermediate values rather than blocking the sender.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan uint64]struct{}
	revision  uint64
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan uint64]struct{}),
	}
}

// Subscribe returns a channel that receives each new revision.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan uint64 {
	ch := make(chan uint64, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan uint64) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Revision returns the latest broadcast revision. Zero means none yet.
func (n *Notifier) Revision() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.revision
}

// Listeners returns the number of subscribed listeners.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast advances the revision and sends it to all listeners.
func (n *Notifier) Broadcast() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.revision++
	for ch := range n.listeners {
		select {
		case ch <- n.revision:
		default:
			// Replace the stale revision with the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- n.revision:
			default:
			}
		}
	}
	return n.revision
}

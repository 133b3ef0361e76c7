// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Event names broadcast to listeners.
const (
	EventDocumentsChanged = "documents-changed"
	EventDatabaseChanged  = "database-changed"
)

// Notifier broadcasts named events to all subscribed listeners.
// Listeners receive the event name and should re-query the API for
// fresh state.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan string]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives event names.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan string {
	ch := make(chan string, 4)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan string) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends an event to all listeners.
// Non-blocking: if a listener's channel is full, the event is skipped.
func (n *Notifier) Broadcast(event string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- event:
		default:
			// Channel full, skip (listener will catch up on next broadcast)
		}
	}
}

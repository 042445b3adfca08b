package services

import (
	"log"
	"sync"

	"github.com/zaidzaid0342-dotcom/restaurant/models"
)

// Event names emitted to connected clients
const (
	EventNewOrder     = "newOrder"
	EventOrderUpdated = "orderUpdated"
)

// Event is a notification about an order, carrying the full payload
type Event struct {
	Name  string
	Order models.Order
}

// subscriberBufferSize bounds how far a subscriber may fall behind
// before events are dropped for it
const subscriberBufferSize = 16

// Broadcaster fans out order events to all connected listeners.
// Delivery is best-effort and at-most-once: a listener that connects
// after an event fires never receives it, and a listener that cannot
// keep up has events dropped. The subscriber set is process-local and
// does not survive restarts; reconnecting clients must re-subscribe.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[uint64]chan Event
	nextID      uint64
	closed      bool
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan Event),
	}
}

// Subscribe registers a listener and returns its event channel along
// with a cancel function that removes the listener and closes the
// channel. Cancel is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish delivers the event to every current subscriber. A subscriber
// whose buffer is full misses the event; it must catch up by re-fetching.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("Dropping %s event for slow subscriber %d", event.Name, id)
		}
	}
}

// SubscriberCount returns the number of connected listeners
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close removes and closes every subscriber channel. Subsequent
// Subscribe calls receive an already-closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}

var broadcasterInstance *Broadcaster

// InitBroadcaster creates the broadcaster used by the HTTP handlers
func InitBroadcaster() *Broadcaster {
	broadcasterInstance = NewBroadcaster()
	return broadcasterInstance
}

// GetBroadcaster returns the broadcaster instance, creating it lazily
// so handlers work without explicit initialization
func GetBroadcaster() *Broadcaster {
	if broadcasterInstance == nil {
		broadcasterInstance = NewBroadcaster()
	}
	return broadcasterInstance
}

// SetBroadcaster sets the broadcaster instance (primarily for testing)
func SetBroadcaster(b *Broadcaster) {
	broadcasterInstance = b
}

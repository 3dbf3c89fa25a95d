package catalog

import "sync"

// EventType names a catalog mutation.
type EventType string

const (
	EventAppended EventType = "appended"
	EventRenamed  EventType = "renamed"
	EventRemoved  EventType = "removed"
	// EventReset is published when an undecodable blob was replaced with an
	// empty catalog.
	EventReset EventType = "reset"
)

// Event describes a mutation that has been persisted.
type Event struct {
	Type    EventType
	EntryID string
	Entry   Entry
}

const subscriberBuffer = 16

type broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func newBroker() *broker {
	return &broker{subs: make(map[chan Event]struct{})}
}

func (b *broker) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// publish never blocks. A subscriber that has fallen behind loses its oldest
// pending event.
func (b *broker) publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

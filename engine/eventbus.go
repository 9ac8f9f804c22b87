package engine

import (
	"sync"
	"time"
)

type EventType int

type SubscriberID int

// Event is a single in-process notification. Timestamp is filled in at
// emit time when the caller leaves it zero.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type subscription struct {
	id    SubscriberID
	fn    func(Event)
	types map[EventType]struct{} // nil means every type
}

func (s subscription) wants(t EventType) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// EventBus fans events out to in-process subscribers. Handlers run on the
// emitting goroutine, so they must not block.
type EventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	lastID SubscriberID
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a handler for every event type.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	return eb.add(subscription{fn: fn})
}

// SubscribeTypes registers a handler for the listed event types only.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	wanted := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}
	return eb.add(subscription{fn: fn, types: wanted})
}

func (eb *EventBus) add(s subscription) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.lastID++
	s.id = eb.lastID
	eb.subs = append(eb.subs, s)
	return s.id
}

// Unsubscribe drops the handler registered under id, if it is still there.
func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i := range eb.subs {
		if eb.subs[i].id == id {
			eb.subs = append(eb.subs[:i], eb.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers evt to every matching subscriber in registration order.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.subs...)
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.wants(evt.Type) {
			s.fn(evt)
		}
	}
}

package service

import (
	"modelsync/internal/bus"
	"modelsync/internal/notification"
)

// Event is the subscriber view of a notification
type Event struct {
	Type    notification.Kind `json:"type"`
	ID      notification.ID   `json:"id"`
	Summary string            `json:"summary"`
	Nodes   []string          `json:"nodes,omitempty"`
}

// EventFor describes n as an Event
func EventFor(n notification.Notification) Event {
	return Event{
		Type:    n.Kind(),
		ID:      n.NotificationID(),
		Summary: notification.Describe(n),
		Nodes:   notification.Nodes(n),
	}
}

// EventBus is a terminal receiver that publishes every notification to
// handlers and channel subscribers
type EventBus struct {
	handlers    []func(Event)
	subscribers []chan<- Event
	dropped     int
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Handle registers fn to run for every event before Publish returns.
// Handlers never miss an event.
func (eb *EventBus) Handle(fn func(Event)) {
	eb.handlers = append(eb.handlers, fn)
}

// Publish runs the handlers, then sends the event to all subscribers
// without blocking
func (eb *EventBus) Publish(event Event) {
	for _, fn := range eb.handlers {
		fn(event)
	}
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
			eb.dropped++
		}
	}
}

// Dropped is the number of events skipped because a subscriber was full
func (eb *EventBus) Dropped() int {
	return eb.dropped
}

// Receive publishes n
func (eb *EventBus) Receive(_ bus.Sender, n notification.Notification) error {
	eb.Publish(EventFor(n))
	return nil
}

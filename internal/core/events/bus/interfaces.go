package bus

import (
	"time"

	"github.com/zeusync/thinui/internal/core/ids"
)

// Session lifecycle event types.
const (
	SessionCreated = "session.created"
	SessionKilled  = "session.killed"
	SessionExpired = "session.expired"
)

// EventBus is a thread-safe, in-process pub/sub bus for session lifecycle
// events.
//
// Delivery is synchronous: Publish calls every handler of the event's type in
// the caller goroutine, in subscription order. Handler errors are joined and
// returned. Handlers must be quick and must not publish on the same bus.
type EventBus interface {
	Publish(event Event) error
	// PublishAsync delivers in a separate goroutine; the channel receives the
	// joined error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the subscription. Nil is accepted.
	Unsubscribe(Subscription) error

	// Subscribers returns the number of active subscriptions for a type.
	Subscribers(eventType string) int
}

// Event is an immutable notification about one session.
type Event struct {
	Type      string
	Session   ids.ID
	Timestamp time.Time
	Data      map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ string, session ids.ID, data map[string]any) Event {
	return Event{Type: typ, Session: session, Timestamp: time.Now(), Data: data}
}

type EventHandler func(event Event) error

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "message.show").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeShowMessage    = "message.show"
	TypeSourceFailed   = "source.failed"
	TypeFetchCompleted = "fetch.completed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// ShowMessageEvent asks the presentation layer to show a transient message.
type ShowMessageEvent struct {
	baseEvent
	Message string
}

// NewShowMessageEvent creates a ShowMessageEvent.
func NewShowMessageEvent(message string) ShowMessageEvent {
	return ShowMessageEvent{
		baseEvent: newBaseEvent(TypeShowMessage),
		Message:   message,
	}
}

// SourceFailedEvent is emitted when a single source fails under an isolating
// policy and its section is replaced with an empty one.
type SourceFailedEvent struct {
	baseEvent
	Category string
	Reason   string
}

// NewSourceFailedEvent creates a SourceFailedEvent.
func NewSourceFailedEvent(category, reason string) SourceFailedEvent {
	return SourceFailedEvent{
		baseEvent: newBaseEvent(TypeSourceFailed),
		Category:  category,
		Reason:    reason,
	}
}

// FetchCompletedEvent is emitted after every aggregate fetch, successful or
// not. Entries is zero when Err is set.
type FetchCompletedEvent struct {
	baseEvent
	Duration time.Duration
	Entries  int
	Err      error
}

// NewFetchCompletedEvent creates a FetchCompletedEvent.
func NewFetchCompletedEvent(d time.Duration, entries int, err error) FetchCompletedEvent {
	return FetchCompletedEvent{
		baseEvent: newBaseEvent(TypeFetchCompleted),
		Duration:  d,
		Entries:   entries,
		Err:       err,
	}
}

// Succeeded reports whether the fetch produced a list.
func (e FetchCompletedEvent) Succeeded() bool { return e.Err == nil }

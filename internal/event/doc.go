// Package event provides the one-shot notification bus that carries
// transient messages from the store and aggregator to whoever is listening.
//
// Events are best-effort and not durable. [Bus.Publish] delivers to the
// handlers registered at the moment of the call; a subscriber that arrives
// later never sees earlier events, and an event published with no
// subscribers is dropped.
//
// # Main Types
//
//   - [Event]: Interface implemented by every event (EventType, Timestamp)
//   - [Bus]: Synchronous multicast dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Types
//
//   - [ShowMessageEvent] ("message.show"): text for a transient toast
//   - [SourceFailedEvent] ("source.failed"): a source failed and was
//     replaced with an empty section
//   - [FetchCompletedEvent] ("fetch.completed"): one aggregate fetch ended
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	id := bus.Subscribe(event.TypeShowMessage, func(e event.Event) {
//	    msg := e.(event.ShowMessageEvent)
//	    fmt.Println(msg.Message)
//	})
//	defer bus.Unsubscribe(id)
//
//	bus.Publish(event.NewShowMessageEvent("clicked: Kotlin MVI"))
//
// Handlers run on the publishing goroutine. A handler that needs to do slow
// work should hand the event off (for example with tea.Program.Send) rather
// than block the publisher. A panicking handler is recovered and logged and
// does not prevent delivery to the remaining handlers.
package event

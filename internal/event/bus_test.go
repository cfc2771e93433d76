package event

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/mosaic/internal/logging"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var got []string
	id := bus.Subscribe(TypeShowMessage, func(e Event) {
		got = append(got, e.(ShowMessageEvent).Message)
	})
	if id == "" {
		t.Fatal("Subscribe should return a non-empty ID")
	}

	bus.Publish(NewShowMessageEvent("clicked: Kotlin MVI"))

	if len(got) != 1 || got[0] != "clicked: Kotlin MVI" {
		t.Errorf("got %v, want one message", got)
	}
}

func TestBus_PublishWithoutSubscribersIsDropped(t *testing.T) {
	bus := NewBus()
	bus.Publish(NewShowMessageEvent("lost"))

	var got int
	bus.Subscribe(TypeShowMessage, func(Event) { got++ })

	if got != 0 {
		t.Errorf("late subscriber received %d past events, want 0", got)
	}
}

func TestBus_OnlyMatchingTypeReceives(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeSourceFailed, func(Event) {
		t.Error("source.failed handler should not see message.show")
	})
	var shown int
	bus.Subscribe(TypeShowMessage, func(Event) { shown++ })

	bus.Publish(NewShowMessageEvent("hi"))

	if shown != 1 {
		t.Errorf("shown = %d, want 1", shown)
	}
}

func TestBus_OrderSpecificThenWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "all") })
	bus.Subscribe(TypeFetchCompleted, func(Event) { order = append(order, "first") })
	bus.Subscribe(TypeFetchCompleted, func(Event) { order = append(order, "second") })

	bus.Publish(NewFetchCompletedEvent(time.Second, 18, nil))

	want := "first,second,all"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int
	id := bus.Subscribe(TypeShowMessage, func(Event) { calls++ })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should report a removed subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should report false")
	}

	bus.Publish(NewShowMessageEvent("x"))
	if calls != 0 {
		t.Errorf("calls = %d after unsubscribe, want 0", calls)
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
}

func TestBus_PanickingHandlerIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(WithLogger(logging.NewWithWriter(&buf, logging.LevelError)))

	bus.Subscribe(TypeShowMessage, func(Event) { panic("boom") })
	var delivered bool
	bus.Subscribe(TypeShowMessage, func(Event) { delivered = true })

	bus.Publish(NewShowMessageEvent("x"))

	if !delivered {
		t.Error("handler after a panicking handler should still run")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic was not logged: %q", buf.String())
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TypeShowMessage, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	if bus.SubscriptionCount() != 2 {
		t.Fatalf("SubscriptionCount() = %d, want 2", bus.SubscriptionCount())
	}
	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear, want 0", bus.SubscriptionCount())
	}
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus()

	var received atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(TypeShowMessage, func(Event) { received.Add(1) })
			bus.Unsubscribe(id)
		}()
		go func() {
			defer wg.Done()
			bus.Publish(NewShowMessageEvent("x"))
		}()
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", bus.SubscriptionCount())
	}
}

func TestEventConstructors(t *testing.T) {
	cause := errors.New("simulated network error")
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"show message", NewShowMessageEvent("m"), TypeShowMessage},
		{"source failed", NewSourceFailedEvent("ads", "timeout"), TypeSourceFailed},
		{"fetch completed", NewFetchCompletedEvent(time.Millisecond, 0, cause), TypeFetchCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.EventType() != tt.want {
				t.Errorf("EventType() = %q, want %q", tt.event.EventType(), tt.want)
			}
			if tt.event.Timestamp().IsZero() {
				t.Error("Timestamp() should be set")
			}
		})
	}

	done := NewFetchCompletedEvent(time.Second, 18, nil)
	if !done.Succeeded() {
		t.Error("Succeeded() = false for nil error")
	}
	if NewFetchCompletedEvent(0, 0, cause).Succeeded() {
		t.Error("Succeeded() = true for failed fetch")
	}
}

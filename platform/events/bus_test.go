package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	Value string
}

func (e testEvent) EventName() string { return "test.event" }

func TestPublishSyncRunsHandlersAndCollectsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var seen []string
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, event Event) error {
		seen = append(seen, event.(testEvent).Value)
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return errors.New("handler failed")
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), Value: "hello"})
	if err == nil {
		t.Fatal("expected combined handler error")
	}
	if len(seen) != 1 || seen[0] != "hello" {
		t.Fatalf("first handler saw %v, want [hello]", seen)
	}
}

func TestPublishIsAsynchronous(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan string, 1)
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, event Event) error {
		done <- event.(testEvent).Value
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), Value: "async"})

	select {
	case got := <-done:
		if got != "async" {
			t.Fatalf("handler saw %q, want %q", got, "async")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPublishSurvivesCancelledRequestContext(t *testing.T) {
	bus := NewInMemoryBus(nil)

	done := make(chan error, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		done <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handler context cancelled: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestSubscribeIsEventNameScoped(t *testing.T) {
	bus := NewInMemoryBus(nil)

	called := false
	bus.Subscribe("other.event", HandlerFunc(func(context.Context, Event) error {
		called = true
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("PublishSync() error: %v", err)
	}
	if called {
		t.Fatal("handler for other.event should not run")
	}
}

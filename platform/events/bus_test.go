package events

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"dealdesk_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func newTestBus() *InMemoryBus {
	return NewInMemoryBus(logger.NewWithWriter("production", io.Discard))
}

func TestPublishRunsOnlyMatchingHandlers(t *testing.T) {
	bus := newTestBus()

	var hits, misses atomic.Int32
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error {
		hits.Add(1)
		return nil
	}))
	bus.Subscribe("b", HandlerFunc(func(context.Context, Event) error {
		misses.Add(1)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "a"})
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "a"})
	bus.Wait()

	if hits.Load() != 2 || misses.Load() != 0 {
		t.Fatalf("expected 2 hits and 0 misses, got %d and %d", hits.Load(), misses.Load())
	}
}

func TestPublishDetachesRequestCancellation(t *testing.T) {
	bus := newTestBus()

	var handlerErr atomic.Value
	bus.Subscribe("a", HandlerFunc(func(ctx context.Context, _ Event) error {
		time.Sleep(10 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			handlerErr.Store(err)
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent(), name: "a"})
	cancel()
	bus.Wait()

	if v := handlerErr.Load(); v != nil {
		t.Fatalf("handler saw cancelled context: %v", v)
	}
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := newTestBus()

	var ran atomic.Bool
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error {
		panic("boom")
	}))
	bus.Subscribe("a", HandlerFunc(func(context.Context, Event) error {
		ran.Store(true)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "a"})
	bus.Wait()

	if !ran.Load() {
		t.Fatalf("expected the second handler to run")
	}
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := newTestBus()
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	bus.Subscribe("x", HandlerFunc(func(context.Context, Event) error { return errA }))
	bus.Subscribe("x", HandlerFunc(func(context.Context, Event) error { return nil }))
	bus.Subscribe("x", HandlerFunc(func(context.Context, Event) error { return errB }))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "x"})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "none"}); err != nil {
		t.Fatalf("expected nil without handlers, got %v", err)
	}
}

func TestNewBaseEventStampsIdentity(t *testing.T) {
	a := NewBaseEvent()
	b := NewBaseEvent()
	if a.ID == b.ID {
		t.Fatalf("expected distinct event ids")
	}
	if a.OccurredAt().Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", a.OccurredAt().Location())
	}
	if got := eventID(testEvent{BaseEvent: a, name: "x"}); got != a.ID.String() {
		t.Fatalf("expected event id %s, got %q", a.ID, got)
	}
}

package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventSessionInvalidated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventSessionInvalidated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventLoggedOut, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSessionInvalidated})
	if err == nil || err.Error() != "first failed" {
		t.Fatalf("Publish error = %v, want first failed", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestPublishRecoversHandlerPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false
	d.Subscribe(EventSessionInvalidated, func(context.Context, Event) error {
		panic("notice sink closed")
	})
	d.Subscribe(EventSessionInvalidated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSessionInvalidated})
	if err == nil {
		t.Fatal("expected the panic to surface as an error")
	}
	if !reached {
		t.Fatal("handlers after a panicking one should still run")
	}
}

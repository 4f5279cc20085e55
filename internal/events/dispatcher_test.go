package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var received []Event

	dispatcher.Subscribe(EventLoginFailed, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	event := NewEvent(EventLoginFailed, "u-1", LoginFailedPayload{Email: "a@example.com", Reason: "wrong password"})
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(received) != 1 {
		t.Fatalf("received %d events, want 1", len(received))
	}
	if received[0].ID == "" || received[0].Timestamp.IsZero() {
		t.Error("event not stamped with id and timestamp")
	}
	if received[0].SubjectID != "u-1" {
		t.Errorf("subject = %q, want u-1", received[0].SubjectID)
	}
}

func TestDispatcherHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var secondCalled bool

	dispatcher.Subscribe(EventTokenRevoked, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventTokenRevoked, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), NewEvent(EventTokenRevoked, "u-1", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !secondCalled {
		t.Error("second handler skipped after first errored")
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), NewEvent(EventRoleChanged, "u-1", nil)); err != nil {
		t.Fatalf("publish without subscribers: %v", err)
	}
}

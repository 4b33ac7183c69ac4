package service

import (
	"context"
	"testing"

	"github.com/spec-kit/duty-attendance/internal/events"
)

func TestInvalidationRaisesNotice(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var notices []string
	svc := NewNotificationService(dispatcher, nil, func(_ context.Context, message string) {
		notices = append(notices, message)
	})
	svc.RegisterHandlers()

	_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventSessionRefreshed})
	_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventSessionInvalidated, Username: "alice"})

	if len(notices) != 1 || notices[0] != SessionExpiredNotice {
		t.Fatalf("notices = %v", notices)
	}
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/events"
)

// SessionExpiredNotice is shown when a refresh failure ends the session.
const SessionExpiredNotice = "Your session has expired. Please log in again."

// NoticeFunc delivers a short message to whoever is using the client.
type NoticeFunc func(ctx context.Context, message string)

// NotificationService turns session and workflow events into log lines
// and user-facing notices.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	notices    []NoticeFunc
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, notices ...NoticeFunc) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		notices:    notices,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSessionEstablished, n.handleSessionEstablished)
	n.dispatcher.Subscribe(events.EventSessionRefreshed, n.handleSessionRefreshed)
	n.dispatcher.Subscribe(events.EventSessionInvalidated, n.handleSessionInvalidated)
	n.dispatcher.Subscribe(events.EventLoggedOut, n.handleLoggedOut)
	n.dispatcher.Subscribe(events.EventDutiesAssigned, n.handleDutiesAssigned)
	n.dispatcher.Subscribe(events.EventAttendanceChanged, n.handleAttendanceChanged)
}

func (n *NotificationService) handleSessionEstablished(_ context.Context, event events.Event) error {
	n.logger.Info("SessionEstablished", zap.String("username", event.Username), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSessionRefreshed(_ context.Context, event events.Event) error {
	n.logger.Debug("SessionRefreshed", zap.String("username", event.Username))
	return nil
}

func (n *NotificationService) handleSessionInvalidated(ctx context.Context, event events.Event) error {
	n.logger.Warn("SessionInvalidated", zap.String("username", event.Username), zap.Any("payload", event.Payload))
	n.notify(ctx, SessionExpiredNotice)
	return nil
}

func (n *NotificationService) handleLoggedOut(_ context.Context, event events.Event) error {
	n.logger.Info("LoggedOut", zap.String("username", event.Username))
	return nil
}

func (n *NotificationService) handleDutiesAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("DutiesAssigned", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleAttendanceChanged(_ context.Context, event events.Event) error {
	n.logger.Info("AttendanceChanged", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) notify(ctx context.Context, message string) {
	for _, notice := range n.notices {
		notice(ctx, message)
	}
}

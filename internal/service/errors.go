package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/events"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// relabel keeps the classification of err but replaces the message a
// person sees. Session invalidation passes through untouched.
func relabel(err error, message string) error {
	if errors.Is(err, apperrors.ErrSessionInvalidated) {
		return err
	}
	de := apperrors.ToDomainError(err)
	return &apperrors.DomainError{
		Kind:       de.Kind,
		Code:       de.Code,
		Message:    message,
		HTTPStatus: de.HTTPStatus,
		Details:    de.Details,
		Err:        err,
	}
}

// detailOr keeps a backend-supplied message and falls back otherwise.
func detailOr(err error, fallback string) error {
	if errors.Is(err, apperrors.ErrSessionInvalidated) {
		return err
	}
	de := apperrors.ToDomainError(err)
	if de.Kind == apperrors.KindServer && de.Message != "" {
		return err
	}
	return relabel(err, fallback)
}

func invalidated(err error) bool {
	return errors.Is(err, apperrors.ErrSessionInvalidated)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, eventType events.EventType, username string, payload interface{}) {
	if dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Username:  username,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

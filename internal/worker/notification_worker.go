package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Debug("notification handlers registered")
	}
}

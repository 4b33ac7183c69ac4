package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/service"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// StartSessionKeeper refreshes the access token ahead of its expiry every
// interval until ctx is done. A non-positive interval disables it.
func StartSessionKeeper(ctx context.Context, sessions *service.SessionManager, interval, window time.Duration, logger *zap.Logger) {
	if sessions == nil || interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				keepAlive(ctx, sessions, window, logger)
			}
		}
	}()
}

func keepAlive(ctx context.Context, sessions *service.SessionManager, window time.Duration, logger *zap.Logger) {
	refreshed, err := sessions.RefreshIfExpiring(ctx, window)
	switch {
	case errors.Is(err, apperrors.ErrSessionInvalidated):
		logger.Info("session ended during keep-alive")
	case err != nil:
		logger.Warn("session keep-alive failed", zap.Error(err))
	case refreshed:
		logger.Debug("access token refreshed ahead of expiry")
	}
}

package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/observability"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			// A failed refresh already cleared the session; send the
			// browser back to the login surface.
			if errors.Is(err, apperrors.ErrSessionInvalidated) {
				metrics.RecordError(c.Route().Path, c.Method(), apperrors.ErrSessionInvalidated.Code)
				err = c.Redirect(auth.PathLogin, fiber.StatusSeeOther)
				return
			}

			status, code, message, details := describeError(err)
			metrics.RecordError(c.Route().Path, c.Method(), code)
			response := fiber.Map{"error": fiber.Map{
				"code":    code,
				"message": message,
			}}
			if len(details) > 0 {
				response["error"].(fiber.Map)["details"] = details
			}
			if status >= fiber.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			c.Status(status)
			err = c.JSON(response)
		}()
		return c.Next()
	}
}

// describeError maps err to the console's response status and body. Errors
// without an HTTP status came from the transport and become 502.
func describeError(err error) (int, string, string, map[string]any) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, utils.StatusMessage(fiberErr.Code), fiberErr.Message, nil
	}

	domainErr := apperrors.ToDomainError(err)
	status := domainErr.HTTPStatus
	switch {
	case domainErr.Kind == apperrors.KindNetwork:
		status = fiber.StatusBadGateway
	case status == 0:
		status = fiber.StatusBadGateway
	case domainErr.Kind == apperrors.KindServer && status >= fiber.StatusInternalServerError:
		status = fiber.StatusBadGateway
	}
	return status, domainErr.Code, domainErr.Message, domainErr.Details
}

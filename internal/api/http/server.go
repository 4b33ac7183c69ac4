package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/duty-attendance/internal/api/http/handlers"
	"github.com/spec-kit/duty-attendance/internal/app"
)

// NewServer builds the console fiber app over the wired services.
func NewServer(a *app.App) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               a.Config.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(server, a.Logger, a.Metrics, a.Config.API.RequestTimeout())

	RegisterRoutes(server, RouteConfig{
		Health:   handlers.NewHealthHandler(a.Config.App.Name, a.Config.App.Version, a.Store, a.Gateway.Reachable, a.Redis()),
		Session:  handlers.NewSessionHandler(a.Sessions),
		Admin:    handlers.NewAdminHandler(a.Teachers, a.Duties, a.Reports),
		Teacher:  handlers.NewTeacherHandler(a.Attendance, a.Duties),
		Sessions: a.Sessions,
		Gatherer: a.Registry,
	})
	return server
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/duty-attendance/internal/api/http/handlers"
	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Session  *handlers.SessionHandler
	Admin    *handlers.AdminHandler
	Teacher  *handlers.TeacherHandler
	Sessions auth.Admitter
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(observability.Handler(cfg.Gatherer)))
	}

	app.Get(auth.PathLogin, cfg.Session.LoginPage)
	app.Post("/login", cfg.Session.Login)
	app.Post("/logout", cfg.Session.Logout)
	app.Get("/session", cfg.Session.Session)
	app.Get(auth.PathUnauthorized, cfg.Session.Unauthorized)

	admin := app.Group(auth.PathAdminDashboard, auth.RequireRole(cfg.Sessions, domain.RoleAdmin))
	admin.Get("", cfg.Admin.Dashboard)
	admin.Get("/teachers", cfg.Admin.ListTeachers)
	admin.Post("/teachers", cfg.Admin.CreateTeacher)
	admin.Get("/teachers/:id", cfg.Admin.GetTeacher)
	admin.Put("/teachers/:id", cfg.Admin.UpdateTeacher)
	admin.Delete("/teachers/:id", cfg.Admin.DeleteTeacher)
	admin.Get("/teachers/:id/report", cfg.Admin.TeacherReport)
	admin.Get("/periods", cfg.Admin.ListPeriods)
	admin.Post("/periods", cfg.Admin.CreatePeriod)
	admin.Post("/periods/:id/assign", cfg.Admin.AssignPeriod)
	admin.Get("/assignments", cfg.Admin.ListAssignments)

	teacher := app.Group(auth.PathTeacherDashboard, auth.RequireRole(cfg.Sessions, domain.RoleTeacher))
	teacher.Get("", cfg.Teacher.Dashboard)
	teacher.Post("/check-in", cfg.Teacher.CheckIn)
	teacher.Post("/check-out", cfg.Teacher.CheckOut)
	teacher.Get("/attendance", cfg.Teacher.Attendance)
	teacher.Get("/duties", cfg.Teacher.Duties)
}

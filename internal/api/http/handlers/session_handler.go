package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/duty-attendance/internal/api/dto"
	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/gateway"
	"github.com/spec-kit/duty-attendance/internal/service"
)

// UnauthorizedMessage is the body of the unauthorized surface.
const UnauthorizedMessage = "You do not have permission to view this page."

// SessionHandler exposes the login surface and session endpoints.
type SessionHandler struct {
	sessions *service.SessionManager
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// LoginPage handles GET /. A signed-in user is sent to their dashboard.
func (h *SessionHandler) LoginPage(c *fiber.Ctx) error {
	state := h.sessions.State()
	if state.Loading {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": fiber.Map{
			"code":    "SESSION_LOADING",
			"message": "Loading...",
		}})
	}
	if state.User != nil {
		return c.Redirect(auth.DashboardFor(state.User.Role), http.StatusSeeOther)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"surface": "login"}})
}

// Login handles POST /login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	if !h.sessions.Login(c.UserContext(), req.Username, req.Password) {
		return fiber.NewError(http.StatusUnauthorized, gateway.InvalidCredentialsMessage)
	}

	user := h.sessions.CurrentUser()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":     dto.NewIdentityResponse(user),
			"redirect": auth.DashboardFor(user.Role),
		},
	})
}

// Logout handles POST /logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Logout(c.UserContext())
	return c.Redirect(auth.PathLogin, http.StatusSeeOther)
}

// Session handles GET /session.
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	state := h.sessions.State()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":    dto.NewIdentityResponse(state.User),
			"loading": state.Loading,
			"phase":   state.Phase.String(),
		},
	})
}

// Unauthorized handles GET /unauthorized.
func (h *SessionHandler) Unauthorized(c *fiber.Ctx) error {
	return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": fiber.Map{
		"code":    "FORBIDDEN",
		"message": UnauthorizedMessage,
	}})
}

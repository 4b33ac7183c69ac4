package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

const identityKey = "session_identity"

// Admitter reports the route guard's decision for the current session.
type Admitter interface {
	Admit(requiredRole domain.Role) (Verdict, *domain.Identity)
}

// RequireRole admits a request to a surface requiring role, or redirects
// the way Admit decides. While the session is still initializing the
// request is answered with 503.
func RequireRole(sessions Admitter, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verdict, user := sessions.Admit(role)
		switch verdict {
		case RenderChildren:
			c.Locals(identityKey, user)
			return c.Next()
		case Wait:
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": fiber.Map{
				"code":    "SESSION_LOADING",
				"message": "Loading...",
			}})
		default:
			return c.Redirect(verdict.Target(user), fiber.StatusSeeOther)
		}
	}
}

// IdentityFromContext retrieves the identity RequireRole admitted.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

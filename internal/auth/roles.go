package auth

import "github.com/spec-kit/duty-attendance/internal/domain"

// Verdict is the admission decision for a role-gated surface.
type Verdict int

const (
	// Wait means the session is still initializing.
	Wait Verdict = iota
	RenderChildren
	RedirectLogin
	RedirectOwnDashboard
	RedirectUnauthorized
)

// Navigable surfaces.
const (
	PathLogin            = "/"
	PathAdminDashboard   = "/admin"
	PathTeacherDashboard = "/teacher"
	PathUnauthorized     = "/unauthorized"
)

func (v Verdict) String() string {
	switch v {
	case Wait:
		return "wait"
	case RenderChildren:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectOwnDashboard:
		return "redirect_own_dashboard"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Admit decides whether a surface requiring requiredRole may be shown.
// An empty requiredRole means the surface only needs a logged-in user.
//
// Rules are evaluated in order; the role-specific redirects win over the
// generic unauthorized fallback, so an admin or teacher is always sent to
// their own dashboard rather than to /unauthorized.
func Admit(loading bool, user *domain.Identity, requiredRole domain.Role) Verdict {
	switch {
	case loading:
		return Wait
	case user == nil:
		return RedirectLogin
	case user.Role == domain.RoleAdmin && requiredRole != domain.RoleAdmin:
		return RedirectOwnDashboard
	case user.Role == domain.RoleTeacher && requiredRole != domain.RoleTeacher:
		return RedirectOwnDashboard
	case requiredRole != "" && user.Role != requiredRole:
		return RedirectUnauthorized
	default:
		return RenderChildren
	}
}

// DashboardFor returns the landing surface of a role.
func DashboardFor(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return PathAdminDashboard
	case domain.RoleTeacher:
		return PathTeacherDashboard
	default:
		return PathUnauthorized
	}
}

// Target returns where a redirecting verdict sends the user. Wait and
// RenderChildren have no target.
func (v Verdict) Target(user *domain.Identity) string {
	switch v {
	case RedirectLogin:
		return PathLogin
	case RedirectOwnDashboard:
		if user == nil {
			return PathLogin
		}
		return DashboardFor(user.Role)
	case RedirectUnauthorized:
		return PathUnauthorized
	default:
		return ""
	}
}

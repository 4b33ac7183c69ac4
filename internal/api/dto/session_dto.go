package dto

import (
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

// LoginRequest payload for the console login form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IdentityResponse describes the signed-in user.
type IdentityResponse struct {
	UserID    domain.ID   `json:"user_id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

// NewIdentityResponse maps an identity.
func NewIdentityResponse(identity *domain.Identity) *IdentityResponse {
	if identity == nil {
		return nil
	}
	resp := &IdentityResponse{
		UserID:   identity.SubjectID,
		Username: identity.Username,
		Role:     identity.Role,
	}
	if !identity.Expiry.IsZero() {
		expiry := identity.Expiry
		resp.ExpiresAt = &expiry
	}
	return resp
}

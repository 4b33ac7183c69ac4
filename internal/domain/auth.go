package domain

import "time"

// Role differentiates the two kinds of users the backend issues tokens for.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

// Identity is the decoded view of an access token. It is never stored on
// its own; it is rebuilt from the persisted token on every start.
type Identity struct {
	SubjectID ID
	Username  string
	Role      Role
	// Expiry is zero when the token carries no exp claim.
	Expiry time.Time
}

// Expired reports whether the identity's token is past its expiry at now.
// Tokens without an expiry never expire client-side.
func (i Identity) Expired(now time.Time) bool {
	if i.Expiry.IsZero() {
		return false
	}
	return i.Expiry.Before(now)
}

// TokenPair is what a successful login yields.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Package authtest mints backend-shaped tokens for tests.
package authtest

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

const signingKey = "authtest-secret"

// MintToken signs an HS256 token carrying the backend's claim set.
// A zero expiresAt leaves the exp claim out.
func MintToken(t testing.TB, userID, username string, role domain.Role, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     string(role),
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Valid mints a token that expires an hour from now.
func Valid(t testing.TB, username string, role domain.Role) string {
	t.Helper()
	return MintToken(t, "1", username, role, time.Now().Add(time.Hour))
}

// Expired mints a token that expired an hour ago.
func Expired(t testing.TB, username string, role domain.Role) string {
	t.Helper()
	return MintToken(t, "1", username, role, time.Now().Add(-time.Hour))
}

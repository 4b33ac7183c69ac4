package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

// ErrMalformedToken is returned for strings that do not decode as a token.
var ErrMalformedToken = errors.New("malformed token")

// Claims describes the access token payload issued by the backend.
type Claims struct {
	UserID   domain.ID   `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec decodes bearer tokens into identities. The client never holds
// the signing key, so signatures are not verified here; the backend does
// that on every request.
type TokenCodec struct {
	parser *jwt.Parser
}

// NewTokenCodec builds a codec.
func NewTokenCodec() *TokenCodec {
	return &TokenCodec{parser: jwt.NewParser()}
}

// Decode returns the identity carried by token. Expired tokens decode
// successfully; callers compare Identity.Expiry themselves.
func (c *TokenCodec) Decode(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrMalformedToken
	}
	claims := &Claims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	identity := domain.Identity{
		SubjectID: claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
	}
	if claims.ExpiresAt != nil {
		identity.Expiry = claims.ExpiresAt.Time
	}
	return identity, nil
}

// ExpiresWithin reports whether token expires before now+window. Malformed
// tokens are reported as expiring.
func (c *TokenCodec) ExpiresWithin(token string, now time.Time, window time.Duration) bool {
	identity, err := c.Decode(token)
	if err != nil {
		return true
	}
	return identity.Expired(now.Add(window))
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents structured JWT claims with role checking. Role
// methods take plain strings so packages that cannot import auth, like the
// middleware, can mirror this interface.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	HasRole(role string) bool
	HasAnyRole(roles ...string) bool
	IsAtLeast(minRole string) bool
	TokenID() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string         `json:"uid,omitempty"`
	UserRole string         `json:"role,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// HasRole checks if the user has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	mine, ok := NormalizeRole(c.UserRole)
	if !ok {
		return false
	}
	wanted, ok := NormalizeRole(role)
	return ok && mine == wanted
}

// HasAnyRole checks the role claim against an allow list
func (c *JWTClaims) HasAnyRole(roles ...string) bool {
	mine, ok := NormalizeRole(c.UserRole)
	if !ok {
		return false
	}

	allowed := make([]Role, 0, len(roles))
	for _, role := range roles {
		if r, ok := NormalizeRole(role); ok {
			allowed = append(allowed, r)
		}
	}

	return RoleAllowed(mine, allowed...)
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	mine, ok := NormalizeRole(c.UserRole)
	if !ok {
		return false
	}
	min, ok := NormalizeRole(minRole)
	return ok && mine.IsAtLeast(min)
}

// TokenID returns the jti claim
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}

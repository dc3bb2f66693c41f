package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes decoded from a verified token
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetRole() Role
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
	GetToken() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Impersonate(ctx context.Context, identifier string) (string, error)
	SessionFromToken(ctx context.Context, token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session) (Identity, error)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() Role
	Active() bool
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetResetTokenDuration() time.Duration
	GetResetBaseURL() string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// SessionStore is the session registry: advisory bookkeeping that makes
// logout effective before natural token expiry. RecordLogin is called once
// per successful login, Revoke on logout. Revoke is idempotent.
type SessionStore interface {
	RecordLogin(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	Revoke(ctx context.Context, token string) error
	IsActive(ctx context.Context, token string) (bool, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Println("[ERR] AUTH " + formatMessage(format, args...))
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Println("[WRN] AUTH " + formatMessage(format, args...))
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Println("[INF] AUTH " + formatMessage(format, args...))
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Println("[DBG] AUTH " + formatMessage(format, args...))
}

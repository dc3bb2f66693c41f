package jwtware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

var defaultTokenLookup = "header:" + fiber.HeaderAuthorization

// ErrJWTMissingOrMalformed is returned when no token could be extracted
// from the request.
var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("UNAUTHENTICATED")

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the auth package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	HasRole(role string) bool
	HasAnyRole(roles ...string) bool
	IsAtLeast(minRole string) bool
}

// SessionChecker consults the session registry. A token that validates but
// has no live session record was revoked by logout.
type SessionChecker interface {
	IsActive(ctx context.Context, token string) (bool, error)
}

// UserLoader re-checks the user behind the claims against live state. It
// returns an error when the account no longer exists or was deactivated.
type UserLoader func(ctx context.Context, claims AuthClaims) error

// ValidationListener is invoked after a token has been validated but before
// authorization checks.
type ValidationListener func(c *fiber.Ctx, claims AuthClaims) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler
	ContextKey     string
	TokenLookup    string
	AuthScheme     string

	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// SessionChecker is consulted after token validation when set; a missing
	// session record fails the request.
	SessionChecker SessionChecker

	// UserLoader re-validates the account behind the claims when set.
	UserLoader UserLoader

	// AllowedRoles is an allow list of role names; empty allows any role.
	AllowedRoles []string
	// MinimumRole specifies the minimum role level required (uses role hierarchy)
	MinimumRole string
	// RoleChecker is an optional function to validate roles against custom logic
	RoleChecker func(AuthClaims, string) bool

	// RestrictedPathPrefixes confines specific roles to path prefixes: a role
	// present in the map may only reach paths matching one of its prefixes.
	// Roles absent from the map are unaffected.
	RestrictedPathPrefixes map[string][]string

	// ContextEnricher is an optional function to propagate claims to the
	// standard Go context after successful validation.
	ContextEnricher func(ctx context.Context, claims AuthClaims) context.Context

	// ValidationListeners are invoked after token validation succeeds.
	ValidationListeners []ValidationListener
}

// New returns a fiber middleware that authenticates requests: extract
// bearer token, verify signature and expiry, check the session registry,
// re-check the account, then authorize by role.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawTokenFromContext(c, cfg.getExtractors())
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if cfg.SessionChecker != nil {
			active, err := cfg.SessionChecker.IsActive(c.UserContext(), raw)
			if err != nil {
				return cfg.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "failed to check session registry"))
			}
			if !active {
				return cfg.ErrorHandler(c, errors.New("session has been revoked", errors.CategoryAuth).
					WithCode(errors.CodeUnauthorized).
					WithTextCode("SESSION_REVOKED"))
			}
		}

		if cfg.UserLoader != nil {
			if err := cfg.UserLoader(c.UserContext(), claims); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		if err := cfg.runValidationListeners(c, claims); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := performAuthorizationChecks(c, claims, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

// performAuthorizationChecks performs RBAC checks using the configured options
func performAuthorizationChecks(c *fiber.Ctx, claims AuthClaims, cfg Config) error {
	if len(cfg.AllowedRoles) > 0 {
		if !claims.HasAnyRole(cfg.AllowedRoles...) {
			return forbidden("required role not present", map[string]any{
				"allowed_roles": cfg.AllowedRoles,
				"role":          claims.Role(),
			})
		}
	}

	// user has at least the minimum role level?
	if cfg.MinimumRole != "" {
		if !claims.IsAtLeast(cfg.MinimumRole) {
			return forbidden("minimum role not met", map[string]any{
				"minimum_role": cfg.MinimumRole,
				"role":         claims.Role(),
			})
		}
	}

	if cfg.RoleChecker != nil {
		roleToCheck := cfg.MinimumRole
		if roleToCheck == "" && len(cfg.AllowedRoles) > 0 {
			roleToCheck = cfg.AllowedRoles[0]
		}
		if !cfg.RoleChecker(claims, roleToCheck) {
			return forbidden("custom role check failed", map[string]any{
				"role": claims.Role(),
			})
		}
	}

	if prefixes, restricted := cfg.RestrictedPathPrefixes[claims.Role()]; restricted {
		if !pathAllowed(c.Path(), prefixes) {
			return forbidden("role not allowed on this path", map[string]any{
				"role": claims.Role(),
				"path": c.Path(),
			})
		}
	}

	return nil
}

func forbidden(msg string, metadata map[string]any) error {
	return errors.New(msg, errors.CategoryAuthz).
		WithCode(errors.CodeForbidden).
		WithTextCode("FORBIDDEN").
		WithMetadata(metadata)
}

func pathAllowed(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func ExtractRawTokenFromContext(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	textCode := "UNAUTHENTICATED"
	message := "invalid or expired token"

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if richErr.TextCode != "" {
			textCode = richErr.TextCode
		}
		if richErr.Message != "" {
			message = richErr.Message
		}
		switch richErr.Code {
		case errors.CodeForbidden:
			status = fiber.StatusForbidden
		case errors.CodeInternal:
			status = fiber.StatusInternalServerError
			textCode = "INTERNAL_ERROR"
			message = "internal server error"
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"code":    textCode,
		"error":   message,
	})
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(c *fiber.Ctx, claims AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(c, claims); err != nil {
			return err
		}
	}
	return nil
}

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		//header:Authorization
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

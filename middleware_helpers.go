package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"

	"github.com/festbite/go-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// DefaultColaboradorAllowedPaths is the fixed set of path prefixes a
// colaborador may reach. The restriction applies on top of each route's own
// role allow list; override it through ProtectedConfig.
var DefaultColaboradorAllowedPaths = []string{
	"/auth/logout",
	"/events",
	"/menus",
	"/orders",
}

// ProtectedConfig tunes the Protected middleware builder.
type ProtectedConfig struct {
	// AllowedRoles restricts the route to these roles; empty allows any.
	AllowedRoles []Role
	// MinimumRole gates by hierarchy level instead of an allow list.
	MinimumRole Role
	// ColaboradorAllowedPaths overrides DefaultColaboradorAllowedPaths.
	ColaboradorAllowedPaths []string
	// SkipLiveUserCheck disables the per-request account lookup.
	SkipLiveUserCheck bool
}

// Protected builds the standard authentication pipeline for a route group:
// token extraction and verification, session registry check, live account
// check, then role authorization.
func Protected(auther *Auther, repo RepositoryManager, opts Config, cfg ...ProtectedConfig) fiber.Handler {
	var pc ProtectedConfig
	if len(cfg) > 0 {
		pc = cfg[0]
	}

	colaboradorPaths := pc.ColaboradorAllowedPaths
	if colaboradorPaths == nil {
		colaboradorPaths = DefaultColaboradorAllowedPaths
	}

	allowed := make([]string, 0, len(pc.AllowedRoles))
	for _, role := range pc.AllowedRoles {
		allowed = append(allowed, string(role))
	}

	wareCfg := jwtware.Config{
		ContextKey:     opts.GetContextKey(),
		TokenLookup:    opts.GetTokenLookup(),
		AuthScheme:     opts.GetAuthScheme(),
		TokenValidator: NewTokenValidatorAdapter(auther.TokenService()),
		SessionChecker: auther.Sessions(),
		AllowedRoles:   allowed,
		MinimumRole:    string(pc.MinimumRole),
		RestrictedPathPrefixes: map[string][]string{
			string(RoleColaborador): colaboradorPaths,
		},
		ContextEnricher: ContextEnricherAdapter,
	}

	if !pc.SkipLiveUserCheck {
		wareCfg.UserLoader = LiveUserLoader(repo)
	}

	return jwtware.New(wareCfg)
}

// NewTokenValidatorAdapter exposes a TokenService as a jwtware.TokenValidator.
func NewTokenValidatorAdapter(ts TokenService) jwtware.TokenValidator {
	return tokenValidatorAdapter{ts: ts}
}

type tokenValidatorAdapter struct {
	ts TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// LiveUserLoader re-checks the claims' user on every request so deactivated
// or deleted accounts lose access before their tokens expire.
func LiveUserLoader(repo RepositoryManager) jwtware.UserLoader {
	return func(ctx context.Context, claims jwtware.AuthClaims) error {
		user, err := repo.Users().GetByIdentifier(ctx, claims.UserID())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUnauthenticated
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for access check")
		}

		if !user.Active {
			return ErrAccountInactive
		}

		return nil
	}
}

// OwnershipResolver reports whether the authenticated user owns the resource
// targeted by the request.
type OwnershipResolver func(c *fiber.Ctx, claims AuthClaims) (bool, error)

// RequireOwnership enforces resource ownership on top of role checks.
// Administrator and manager roles bypass the ownership requirement.
func RequireOwnership(resolver OwnershipResolver, contextKey string) fiber.Handler {
	if contextKey == "" {
		contextKey = "user"
	}

	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(contextKey).(AuthClaims)
		if !ok {
			return ErrUnauthenticated
		}

		role, ok := NormalizeRole(claims.Role())
		if ok && role.OwnershipExempt() {
			return c.Next()
		}

		owns, err := resolver(c, claims)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve resource ownership")
		}

		if !owns {
			return ErrForbidden
		}

		return c.Next()
	}
}

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and
// stores the claims in the standard context for downstream usage.
func ContextEnricherAdapter(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return ctx
	}

	return WithClaimsContext(ctx, authClaims)
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

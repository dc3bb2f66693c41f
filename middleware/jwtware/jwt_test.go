package jwtware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festbite/go-auth/middleware/jwtware"
)

//--------------------------------------------------------------------------------------
// Stubs
//--------------------------------------------------------------------------------------

var roleLevels = map[string]int{
	"client":      0,
	"colaborador": 1,
	"leader":      2,
	"manager":     3,
	"admin":       4,
}

type stubClaims struct {
	subject string
	role    string
}

func (c stubClaims) Subject() string { return c.subject }
func (c stubClaims) UserID() string  { return c.subject }
func (c stubClaims) Role() string    { return c.role }

func (c stubClaims) HasRole(role string) bool {
	return c.role == role
}

func (c stubClaims) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if c.role == role {
			return true
		}
	}
	return false
}

func (c stubClaims) IsAtLeast(minRole string) bool {
	mine, ok := roleLevels[c.role]
	if !ok {
		return false
	}
	min, ok := roleLevels[minRole]
	return ok && mine >= min
}

// stubValidator accepts a fixed set of tokens, mapping each to claims
type stubValidator struct {
	tokens map[string]stubClaims
}

func (v stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, ok := v.tokens[tokenString]
	if !ok {
		return nil, errors.New("token is malformed")
	}
	return claims, nil
}

// stubSessionChecker treats every token in the revoked set as logged out
type stubSessionChecker struct {
	revoked map[string]bool
}

func (s stubSessionChecker) IsActive(_ context.Context, token string) (bool, error) {
	return !s.revoked[token], nil
}

func newTestApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New()
	app.Use(jwtware.New(cfg))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/orders/list", func(c *fiber.Ctx) error {
		return c.SendString("orders")
	})
	app.Get("/admin/panel", func(c *fiber.Ctx) error {
		return c.SendString("admin")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, token string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	payload := map[string]any{}
	_ = json.Unmarshal(body, &payload)

	return resp.StatusCode, payload
}

//--------------------------------------------------------------------------------------
// Tests
//--------------------------------------------------------------------------------------

func TestJWTWareHeaderExtraction(t *testing.T) {
	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"good-token": {subject: "12345", role: "client"},
		}},
	})

	status, _ := doRequest(t, app, "/protected", "good-token")
	assert.Equal(t, fiber.StatusOK, status)

	status, payload := doRequest(t, app, "/protected", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHENTICATED", payload["code"])

	status, _ = doRequest(t, app, "/protected", "unknown-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTWareRevokedSession(t *testing.T) {
	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"live-token":    {subject: "12345", role: "client"},
			"revoked-token": {subject: "12345", role: "client"},
		}},
		SessionChecker: stubSessionChecker{revoked: map[string]bool{
			"revoked-token": true,
		}},
	})

	status, _ := doRequest(t, app, "/protected", "live-token")
	assert.Equal(t, fiber.StatusOK, status)

	status, payload := doRequest(t, app, "/protected", "revoked-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "SESSION_REVOKED", payload["code"])
}

func TestJWTWareUserLoader(t *testing.T) {
	inactive := errors.New("account is inactive")

	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"inactive-user": {subject: "12345", role: "client"},
		}},
		UserLoader: func(_ context.Context, claims jwtware.AuthClaims) error {
			if claims.UserID() == "12345" {
				return inactive
			}
			return nil
		},
	})

	status, _ := doRequest(t, app, "/protected", "inactive-user")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTWareAllowedRoles(t *testing.T) {
	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"manager-token": {subject: "1", role: "manager"},
			"client-token":  {subject: "2", role: "client"},
		}},
		AllowedRoles: []string{"manager", "admin"},
	})

	status, _ := doRequest(t, app, "/protected", "manager-token")
	assert.Equal(t, fiber.StatusOK, status)

	status, payload := doRequest(t, app, "/protected", "client-token")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", payload["code"])
}

func TestJWTWareMinimumRole(t *testing.T) {
	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"leader-token": {subject: "1", role: "leader"},
			"client-token": {subject: "2", role: "client"},
		}},
		MinimumRole: "leader",
	})

	status, _ := doRequest(t, app, "/protected", "leader-token")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doRequest(t, app, "/protected", "client-token")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestJWTWareRestrictedPathPrefixes(t *testing.T) {
	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"colaborador-token": {subject: "1", role: "colaborador"},
			"manager-token":     {subject: "2", role: "manager"},
		}},
		// colaborador may reach /orders even with an open role policy,
		// but nothing else
		RestrictedPathPrefixes: map[string][]string{
			"colaborador": {"/orders"},
		},
	})

	status, _ := doRequest(t, app, "/orders/list", "colaborador-token")
	assert.Equal(t, fiber.StatusOK, status)

	status, payload := doRequest(t, app, "/admin/panel", "colaborador-token")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", payload["code"])

	// unrestricted roles are unaffected
	status, _ = doRequest(t, app, "/admin/panel", "manager-token")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestJWTWareRestrictedPathIntersectsRolePolicy(t *testing.T) {
	// the route-level allow list includes colaborador, but the path
	// restriction still applies on top of it
	app := newTestApp(jwtware.Config{
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"colaborador-token": {subject: "1", role: "colaborador"},
		}},
		AllowedRoles: []string{"colaborador", "manager"},
		RestrictedPathPrefixes: map[string][]string{
			"colaborador": {"/orders"},
		},
	})

	status, _ := doRequest(t, app, "/admin/panel", "colaborador-token")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestJWTWareContextKeyAndLocals(t *testing.T) {
	var captured jwtware.AuthClaims

	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		ContextKey: "auth_user",
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"good-token": {subject: "12345", role: "client"},
		}},
	}))
	app.Get("/protected", func(c *fiber.Ctx) error {
		captured, _ = c.Locals("auth_user").(jwtware.AuthClaims)
		return c.SendString("ok")
	})

	status, _ := doRequest(t, app, "/protected", "good-token")
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, captured)
	assert.Equal(t, "12345", captured.UserID())
}

func TestGetExtractors(t *testing.T) {
	extractors := jwtware.GetExtractors("header:Authorization,query:auth_token,cookie:jwt", "Bearer")
	assert.Len(t, extractors, 3)

	extractors = jwtware.GetExtractors("header:Authorization")
	assert.Len(t, extractors, 1)
}

func TestJWTWareQueryExtractor(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		TokenLookup: "query:auth_token",
		TokenValidator: stubValidator{tokens: map[string]stubClaims{
			"good-token": {subject: "12345", role: "client"},
		}},
	}))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/protected?auth_token=good-token", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

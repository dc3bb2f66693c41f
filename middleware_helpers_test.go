package auth_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/festbite/go-auth"
)

func newOwnershipApp(t *testing.T, role string, resolver auth.OwnershipResolver) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.DefaultErrorHandler,
	})

	// stand-in for the token middleware: seed the request with claims
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &auth.JWTClaims{
			UID:      "user-1",
			UserRole: role,
		})
		return c.Next()
	})

	app.Get("/orders/:id", auth.RequireOwnership(resolver, "user"), func(c *fiber.Ctx) error {
		return c.SendString("order")
	})

	return app
}

func TestRequireOwnership(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		owns       bool
		wantStatus int
	}{
		{
			name:       "owner passes",
			role:       "client",
			owns:       true,
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "non owner forbidden",
			role:       "client",
			owns:       false,
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "admin bypasses ownership",
			role:       "admin",
			owns:       false,
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "manager bypasses ownership",
			role:       "manager",
			owns:       false,
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "colaborador gets no bypass",
			role:       "colaborador",
			owns:       false,
			wantStatus: fiber.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := func(c *fiber.Ctx, claims auth.AuthClaims) (bool, error) {
				return tt.owns, nil
			}

			app := newOwnershipApp(t, tt.role, resolver)

			resp, err := app.Test(httptest.NewRequest("GET", "/orders/42", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequireOwnershipResolverError(t *testing.T) {
	resolver := func(c *fiber.Ctx, claims auth.AuthClaims) (bool, error) {
		return false, errors.New("orders service unreachable")
	}

	app := newOwnershipApp(t, "client", resolver)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/42", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRequireOwnershipMissingClaims(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: auth.DefaultErrorHandler,
	})

	app.Get("/orders/:id", auth.RequireOwnership(func(c *fiber.Ctx, claims auth.AuthClaims) (bool, error) {
		return true, nil
	}, "user"), func(c *fiber.Ctx) error {
		return c.SendString("order")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/42", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

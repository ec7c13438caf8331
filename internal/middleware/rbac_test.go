package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func adminApp(locals map[string]interface{}) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		for key, value := range locals {
			c.Locals(key, value)
		}
		return c.Next()
	})
	app.Use(RequireAdmin())
	app.Get("/reviews", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAdminAllowsAdminClaim(t *testing.T) {
	app := adminApp(map[string]interface{}{LocalUserAdmin: true})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reviews", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAdminAllowsAdminRole(t *testing.T) {
	app := adminApp(map[string]interface{}{LocalUserAdmin: false, LocalUserRole: "Admin"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reviews", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAdminRejectsOthers(t *testing.T) {
	for name, locals := range map[string]map[string]interface{}{
		"member":  {LocalUserAdmin: false, LocalUserRole: "member"},
		"nothing": {},
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := adminApp(locals).Test(httptest.NewRequest(http.MethodGet, "/reviews", nil))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		})
	}
}

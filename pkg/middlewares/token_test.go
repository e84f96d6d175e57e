package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"trading_hub/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTMiddleware())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(MemberID(c) + "|" + MemberName(c))
	})
	return app
}

func TestJWTMiddleware(t *testing.T) {
	app := newApp()
	tok, err := token.GenerateJWT("user-7", "Trader Joe", "member", "test")
	require.NoError(t, err)

	t.Run("query token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me?auth="+tok, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "user-7|Trader Joe", string(body))
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Cookie", CookieToken+"="+tok)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me?auth=garbage", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

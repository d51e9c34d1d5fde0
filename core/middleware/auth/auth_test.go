package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(New(Config{ApiKey: key}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(200) })
	return app
}

func TestAuth(t *testing.T) {
	t.Run("Valid key", func(t *testing.T) {
		app := newApp("secret")
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(Header, "secret")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("Wrong key", func(t *testing.T) {
		app := newApp("secret")
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(Header, "guess")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("Missing key", func(t *testing.T) {
		app := newApp("secret")
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("Auth disabled", func(t *testing.T) {
		app := newApp("")
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

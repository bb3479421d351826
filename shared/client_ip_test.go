package shared

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "first forwarded entry", headers: map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, want: "203.0.113.7"},
		{name: "forwarded beats real ip", headers: map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.2"}, want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, want: "198.51.100.2"},
		{name: "empty forwarded entry", headers: map[string]string{"X-Forwarded-For": " , 10.0.0.1"}, want: UnknownClientIP},
		{name: "no headers", want: UnknownClientIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return c.SendString(ClientIP(c))
			})

			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestIsLocalAddress(t *testing.T) {
	assert.True(t, IsLocalAddress("127.0.0.1"))
	assert.True(t, IsLocalAddress("::1"))
	assert.True(t, IsLocalAddress(UnknownClientIP))
	assert.False(t, IsLocalAddress("203.0.113.7"))
}

func TestClientIP_OutlivesRequest(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		seen = append(seen, ClientIP(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	addresses := []string{"8.8.8.8", "9.9.9.9", "1.1.1.1"}
	for _, ip := range addresses {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, ip)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	assert.Equal(t, addresses, seen)
}

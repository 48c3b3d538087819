package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-32-chars-minimum"

func signToken(t *testing.T, method jwt.SigningMethod, key any, scope string, exp time.Time) string {
	t.Helper()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "valuer",
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestRequireScope(t *testing.T) {
	app := fiber.New()
	app.Post("/assets", RequireScope(testSecret, "assets:write"), func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromCtx(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.Subject)
	})

	hour := time.Now().Add(time.Hour)
	tests := []struct {
		name    string
		header  string
		want    int
		message string
	}{
		{"missing header", "", fiber.StatusForbidden, "missing bearer token"},
		{"not bearer", "Basic dXNlcjpwYXNz", fiber.StatusForbidden, "missing bearer token"},
		{"empty bearer", "Bearer ", fiber.StatusForbidden, "missing bearer token"},
		{"garbage token", "Bearer not.a.jwt", fiber.StatusForbidden, "invalid token"},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), "assets:write", hour), fiber.StatusForbidden, "invalid token"},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "assets:write", time.Now().Add(-time.Minute)), fiber.StatusForbidden, "invalid token"},
		{"none algorithm", "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, "assets:write", hour), fiber.StatusForbidden, "invalid token"},
		{"missing scope", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "assets:read", hour), fiber.StatusForbidden, "missing scope assets:write"},
		{"scope prefix only", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "assets:writer", hour), fiber.StatusForbidden, "missing scope assets:write"},
		{"granted", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), "assets:read assets:write", hour), fiber.StatusOK, "valuer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/assets", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.message, string(body))
		})
	}
}

func TestRequireScope_NoSecretRejectsAll(t *testing.T) {
	app := fiber.New()
	app.Post("/assets", RequireScope("", "assets:write"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/assets", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, jwt.SigningMethodHS256, []byte("x"), "assets:write", time.Now().Add(time.Hour)))
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestClaims_HasScope(t *testing.T) {
	c := &Claims{Scope: " assets:read  assets:write "}
	assert.True(t, c.HasScope("assets:write"))
	assert.False(t, c.HasScope("assets"))
	assert.False(t, (&Claims{}).HasScope("assets:write"))
}

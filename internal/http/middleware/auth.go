package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsLocalKey is the key the verified claims are stored under in Fiber's context locals.
const ClaimsLocalKey = "claims"

// Claims are the bearer token claims. Scope is a space separated list.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(strings.Fields(c.Scope), scope)
}

// RequireScope verifies an HMAC bearer token signed with secret and requires it to grant
// scope. Every rejection is a 403; the message tells a missing token, an invalid token and
// a missing scope apart. With an empty secret every request is rejected.
func RequireScope(secret, scope string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		if len(key) == 0 {
			return fiber.NewError(fiber.StatusForbidden, "authentication is not configured")
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusForbidden, "missing bearer token")
		}

		claims, err := parseClaims(strings.TrimSpace(token), key)
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "invalid token")
		}
		if !claims.HasScope(scope) {
			return fiber.NewError(fiber.StatusForbidden, "missing scope "+scope)
		}

		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

func parseClaims(token string, key []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ClaimsFromCtx returns the claims stored by RequireScope.
func ClaimsFromCtx(c *fiber.Ctx) (*Claims, bool) {
	cl, ok := c.Locals(ClaimsLocalKey).(*Claims)
	return cl, ok
}

package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"assetvaluer/docs"
)

// Swagger serves the Swagger UI and document with the host and scheme the client used.
// defaultHost is advertised when the request carries no Host header.
func Swagger(defaultHost string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		host, scheme := swaggerTarget(c, defaultHost)
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}

func swaggerTarget(c *fiber.Ctx, defaultHost string) (host, scheme string) {
	scheme = c.Protocol()
	if proto := c.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host = c.Get(fiber.HeaderHost)
	if host == "" {
		host = defaultHost
	}
	return host, scheme
}

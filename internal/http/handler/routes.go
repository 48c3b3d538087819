package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"assetvaluer/internal/service"
)

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Assets service.AssetService
	Table  *service.TableService
	Widget *service.WidgetService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. writeGuard runs in front of
// every mutating route.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, writeGuard fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/widget", Widget(svc.Widget))

	// /assets/table must be registered ahead of /assets/:id.
	app.Get("/assets/table", AssetTable(svc.Table))
	app.Get("/assets", ListAssets(svc.Table))
	app.Post("/assets", writeGuard, CreateAsset(svc.Assets))
	app.Get("/assets/:id", GetAsset(svc.Assets))
	app.Get("/assets/:id/image", AssetImage(svc.Assets))
}

// HealthCheck checks DB connectivity only.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
//
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

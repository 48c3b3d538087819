package handler

import (
	"github.com/gofiber/fiber/v2"

	"assetvaluer/internal/service"
)

// Widget serves the camera-capture valuation widget. The body is empty when no markup
// exists for the language.
//
// @Summary  Valuation widget
// @Tags     widget
// @Produce  html
// @Param    language query string false "widget language" default(en)
// @Param    currency query string false "ISO 4217 currency" default(GBP)
// @Success  200
// @Router   /widget [get]
func Widget(svc *service.WidgetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(svc.Render(c.Query("language"), c.Query("currency")))
	}
}

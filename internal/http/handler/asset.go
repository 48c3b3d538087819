package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"assetvaluer/internal/service"
)

// createResponse is returned by POST /assets.
type createResponse struct {
	ID            string `json:"id"`
	Link          string `json:"link"`
	AttachmentRef string `json:"attachmentRef"`
}

// CreateAsset saves a valuation together with its captured image.
//
// @Summary  Save a valuation
// @Tags     assets
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    payload body     map[string]any true "valuation fields and a base64 data-URL image"
// @Success  201     {object} createResponse
// @Failure  400     {object} errorPayload
// @Failure  403     {object} errorPayload
// @Failure  415     {object} errorPayload
// @Failure  422     {object} errorPayload
// @Failure  500     {object} errorPayload
// @Router   /assets [post]
func CreateAsset(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload map[string]any
		if err := json.Unmarshal(c.Body(), &payload); err != nil || payload == nil {
			return writeError(c, fiber.StatusBadRequest, service.KindInvalidPayload, service.ErrInvalidPayload.Error())
		}

		res, err := svc.Save(c.UserContext(), payload)
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(createResponse{
			ID:            res.ID,
			Link:          c.BaseURL() + "/assets/" + res.ID,
			AttachmentRef: res.AttachmentRef,
		})
	}
}

// GetAsset returns one saved asset.
//
// @Summary  Get an asset
// @Tags     assets
// @Produce  json
// @Param    id  path     string true "asset id"
// @Success  200 {object} model.Asset
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /assets/{id} [get]
func GetAsset(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// AssetImage streams the asset's thumbnail.
//
// @Summary  Download an asset image
// @Tags     assets
// @Produce  image/png,image/jpeg,image/gif,image/webp
// @Param    id  path string true "asset id"
// @Success  200
// @Failure  404 {object} errorPayload
// @Router   /assets/{id}/image [get]
func AssetImage(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, info, err := svc.Image(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(rc, size)
	}
}

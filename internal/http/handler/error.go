package handler

import (
	"github.com/gofiber/fiber/v2"

	"assetvaluer/internal/http/middleware"
	"assetvaluer/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// kindStatus maps service error kinds to HTTP statuses.
var kindStatus = map[string]int{
	service.KindInvalidPayload:          fiber.StatusBadRequest,
	service.KindMissingImage:            fiber.StatusUnprocessableEntity,
	service.KindInvalidImageFormat:      fiber.StatusUnprocessableEntity,
	service.KindInvalidImageData:        fiber.StatusUnprocessableEntity,
	service.KindUnsupportedImageType:    fiber.StatusUnsupportedMediaType,
	service.KindRecordCreationFailed:    fiber.StatusInternalServerError,
	service.KindAttachmentStorageFailed: fiber.StatusInternalServerError,
	service.KindNotFound:                fiber.StatusNotFound,
}

// writeServiceError translates a service error. Classified errors carry their own message,
// which for store failures includes the store's reason; anything else is a generic 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	kind := service.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, service.KindInternal, "internal server error")
	}
	return writeError(c, status, kind, err.Error())
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", message)
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", message)
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

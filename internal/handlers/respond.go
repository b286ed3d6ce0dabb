package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrTransactionTimeout):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a dto.ErrorResponse. Client errors carry the
// service message; server errors are logged and answered generically.
func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= 500 {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
		message := "Internal server error"
		if code == fiber.StatusServiceUnavailable {
			message = "The server is busy, please retry"
		}
		return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
	}

	message := err.Error()
	var svcErr *services.Error
	if errors.As(err, &svcErr) && svcErr.Msg != "" {
		message = svcErr.Msg
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

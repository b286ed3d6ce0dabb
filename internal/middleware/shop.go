package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// ShopRequired loads the authenticated owner's shop and stores it with
// tenant.SetShop. Owners without a shop get 403 and must register one first.
// Must run after JWTProtected.
func ShopRequired(actions *services.Actions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, err := tenant.GetOwnerEmail(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		out, err := actions.GetShopByEmail(c.UserContext(), email)
		if err == nil {
			err = out.Err
		}
		if err != nil {
			slog.Error("shop lookup failed", "op", "shop_required", "shop_email", email,
				"request_id", c.GetRespHeader(fiber.HeaderXRequestID), "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Shop lookup is temporarily unavailable",
			})
		}
		if !out.Found {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Register a shop first",
			})
		}

		tenant.SetShop(c, out.Value)
		return c.Next()
	}
}

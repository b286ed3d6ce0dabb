// Package tenant resolves which shop a request acts for. The owner's email
// comes from the verified session token; the shop is loaded from it once per
// request and kept in Fiber locals.
package tenant

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const shopLocal = "shop"

// GetOwnerEmail extracts the owner email from the JWT claims in context.
func GetOwnerEmail(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	email, _ := claims["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("missing email claim")
	}
	return email, nil
}

// SetShop stores the caller's shop for downstream handlers.
func SetShop(c *fiber.Ctx, shop *models.Shop) {
	c.Locals(shopLocal, shop)
}

// GetShop returns the shop stored by SetShop, or nil.
func GetShop(c *fiber.Ctx) *models.Shop {
	if shop, ok := c.Locals(shopLocal).(*models.Shop); ok {
		return shop
	}
	return nil
}

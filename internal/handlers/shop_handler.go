package handlers

import (
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type ShopHandler struct {
	actions *services.Actions
}

func NewShopHandler(actions *services.Actions) *ShopHandler {
	return &ShopHandler{actions: actions.WithMode(services.ModeRaise)}
}

// GetByEmail looks up ?email=, defaulting to the caller's own shop.
func (h *ShopHandler) GetByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		owner, err := tenant.GetOwnerEmail(c)
		if err != nil {
			return badRequest(c, "email is required")
		}
		email = owner
	}

	out, err := h.actions.GetShopByEmail(c.UserContext(), email)
	if err != nil {
		return respondError(c, err)
	}
	if !out.Found {
		return respondError(c, services.ErrShopNotFound)
	}
	return c.JSON(dto.ShopResponse{Shop: out.Value})
}

func (h *ShopHandler) GetByName(c *fiber.Ctx) error {
	out, err := h.actions.GetShopByName(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	if !out.Found {
		return respondError(c, services.ErrShopNotFound)
	}
	return c.JSON(dto.ShopResponse{Shop: out.Value})
}

func (h *ShopHandler) Create(c *fiber.Ctx) error {
	email, err := tenant.GetOwnerEmail(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateShopRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = email

	out, err := h.actions.CreateShop(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ShopResponse{Shop: out.Value})
}

// Update renames the caller's shop and, when "products" is present in the
// body, replaces its product set.
func (h *ShopHandler) Update(c *fiber.Ctx) error {
	shop := tenant.GetShop(c)

	var req dto.UpdateShopRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = shop.Email
	if req.Name == "" {
		req.Name = shop.Name
	}

	out, err := h.actions.UpdateShop(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ShopResponse{Shop: out.Value})
}

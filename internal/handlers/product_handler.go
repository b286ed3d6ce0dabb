package handlers

import (
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProductHandler struct {
	actions *services.Actions
}

func NewProductHandler(actions *services.Actions) *ProductHandler {
	return &ProductHandler{actions: actions.WithMode(services.ModeRaise)}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.ShopID = tenant.GetShop(c).ID

	out, err := h.actions.CreateProduct(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductResponse{Product: out.Value})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.ID = id
	req.ShopID = tenant.GetShop(c).ID

	out, err := h.actions.UpdateProduct(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductResponse{Product: out.Value})
}

package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SalesHandler serves dashboard sales figures. Store failures degrade to an
// empty map so the dashboard still renders; a bad filter is still a 400.
type SalesHandler struct {
	actions *services.Actions
}

func NewSalesHandler(actions *services.Actions) *SalesHandler {
	return &SalesHandler{actions: actions.WithMode(services.ModeFallback)}
}

func (h *SalesHandler) SalesMap(c *fiber.Ctx) error {
	var req dto.SalesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	// Only the caller's own products are reported.
	owned := make(map[uuid.UUID]bool)
	for _, p := range tenant.GetShop(c).Products {
		owned[p.ID] = true
	}
	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		if owned[id] {
			ids = append(ids, id)
		}
	}

	out, err := h.actions.GetSalesMap(c.UserContext(), services.SalesWindow(req.SalesFilter), ids)
	if err == nil && errors.Is(out.Err, services.ErrValidation) {
		err = out.Err
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SalesResponse{SalesMap: out.ValueOr(map[uuid.UUID]int{})})
}

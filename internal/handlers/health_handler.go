package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewHealthHandler(db *gorm.DB, c cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: c}
}

// Check reports store and cache reachability. Only the store decides the
// status code; the service keeps working without its cache.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Cache:     "disabled",
	}
	if err := database.Ping(h.db); err != nil {
		resp.Status = "degraded"
		resp.DB = "unhealthy: " + err.Error()
	}
	if _, disabled := h.cache.(cache.Disabled); !disabled && h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(c.UserContext()); err != nil {
			resp.Cache = "unhealthy: " + err.Error()
		}
	}

	if resp.DB != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

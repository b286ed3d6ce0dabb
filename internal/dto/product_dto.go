package dto

import (
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/google/uuid"
)

type CreateProductRequest struct {
	ShopID     uuid.UUID     `json:"-"`
	Name       string        `json:"name"`
	StockCount int           `json:"stock_count"`
	Metric     models.Metric `json:"metric"`
	Image      *string       `json:"image"`
}

// UpdateProductRequest edits a product. Nil fields are left unchanged.
type UpdateProductRequest struct {
	ID         uuid.UUID      `json:"-"`
	ShopID     uuid.UUID      `json:"-"`
	Name       *string        `json:"name"`
	StockCount *int           `json:"stock_count"`
	Metric     *models.Metric `json:"metric"`
	Image      *string        `json:"image"`
}

type ProductResponse struct {
	Product *models.Product `json:"product"`
}

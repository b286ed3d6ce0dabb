package dto

import (
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
)

type CreateShopRequest struct {
	// Email comes from the session, never from the body.
	Email string `json:"-"`
	Name  string `json:"name"`
}

// UpdateShopRequest renames the shop and, when Products is non-nil, replaces
// the shop's product set with it. An empty list removes every product.
type UpdateShopRequest struct {
	Email    string         `json:"-"`
	Name     string         `json:"name"`
	Products []ProductInput `json:"products"`
}

// ProductInput describes one desired product during reconciliation.
type ProductInput struct {
	Name       string        `json:"name"`
	StockCount int           `json:"stock_count"`
	Metric     models.Metric `json:"metric"`
	Image      *string       `json:"image"`
}

type ShopResponse struct {
	Shop *models.Shop `json:"shop"`
}

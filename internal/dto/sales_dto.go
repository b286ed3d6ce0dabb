package dto

import "github.com/google/uuid"

type SalesRequest struct {
	SalesFilter string      `json:"sales_filter"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
}

type SalesResponse struct {
	SalesMap map[uuid.UUID]int `json:"sales_map"`
}

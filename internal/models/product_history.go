package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HistoryAction string

const HistoryRestock HistoryAction = "RESTOCK"

type StockSnapshot struct {
	StockCount int `json:"stock_count"`
	SoldCount  int `json:"sold_count"`
}

// ProductHistory is an append-only record of a product's stock at creation.
type ProductHistory struct {
	ID        uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID                         `gorm:"type:uuid;not null;index" json:"product_id"`
	Action    HistoryAction                     `gorm:"size:20;not null" json:"action"`
	Snapshot  datatypes.JSONType[StockSnapshot] `json:"snapshot"`
	CreatedAt time.Time                         `json:"created_at"`
}

func (h *ProductHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (ProductHistory) TableName() string {
	return "product_history"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metric is the unit a product's stock is counted in.
type Metric string

const (
	MetricKG    Metric = "KG"
	MetricPiece Metric = "PIECE"
	MetricDozen Metric = "DOZEN"
)

var Metrics = []Metric{MetricKG, MetricPiece, MetricDozen}

func (m Metric) Valid() bool {
	for _, v := range Metrics {
		if v == m {
			return true
		}
	}
	return false
}

// Product belongs to one shop; (shop_id, name) is unique. SoldCount never decreases.
type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_shop_name,priority:1" json:"shop_id"`
	Name       string    `gorm:"size:100;not null;uniqueIndex:idx_products_shop_name,priority:2" json:"name"`
	StockCount int       `gorm:"not null;check:chk_products_stock_count,stock_count >= 0" json:"stock_count"`
	SoldCount  int       `gorm:"not null;check:chk_products_sold_count,sold_count >= 0" json:"sold_count"`
	Metric     Metric    `gorm:"size:10;not null;default:'KG'" json:"metric"`
	Image      *string   `gorm:"type:text" json:"image"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

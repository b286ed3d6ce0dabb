package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailySales is the per-day sales rollup for one product.
//
// Grain: (product_id, day) where day is local midnight. SoldCount holds the
// product's cumulative sold count as of the last stock decrease that day;
// a later decrease on the same day overwrites it. Rows are never deleted,
// including after the product itself is removed.
type DailySales struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_daily_sales_product_day,priority:1" json:"product_id"`
	Day       time.Time `gorm:"not null;uniqueIndex:idx_daily_sales_product_day,priority:2;index" json:"day"`
	SoldCount int       `gorm:"not null" json:"sold_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *DailySales) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (DailySales) TableName() string {
	return "daily_sales"
}

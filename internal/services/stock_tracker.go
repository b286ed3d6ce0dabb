package services

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockAdjustment is the effect of moving a product from one stock count to
// another.
type StockAdjustment struct {
	ProductID     uuid.UUID
	PreviousStock int
	NewStock      int
	ImpliedSold   int
	NewSold       int
}

// DeriveSold treats every unit of stock decrease as a sale. Restocks imply
// nothing and never lower the sold count.
func DeriveSold(previousStock, newStock, previousSold int) (impliedSold, newSold int) {
	impliedSold = max(0, previousStock-newStock)
	return impliedSold, previousSold + impliedSold
}

// StockTracker derives sold counts from stock edits and writes the daily
// rollups and creation history that go with them.
type StockTracker struct {
	clock Clock
}

// NewStockTracker stamps history and daily rollups with clock.
func NewStockTracker(clock Clock) *StockTracker {
	return &StockTracker{clock: clock}
}

// Adjust applies newStock to p in memory and returns what changed. The caller
// saves p.
func (t *StockTracker) Adjust(p *models.Product, newStock int) StockAdjustment {
	implied, sold := DeriveSold(p.StockCount, newStock, p.SoldCount)
	adj := StockAdjustment{
		ProductID:     p.ID,
		PreviousStock: p.StockCount,
		NewStock:      newStock,
		ImpliedSold:   implied,
		NewSold:       sold,
	}
	p.StockCount = newStock
	p.SoldCount = sold
	return adj
}

// RecordSale upserts today's rollup for the product with its cumulative sold
// count. A second sale on the same day overwrites the row.
func (t *StockTracker) RecordSale(tx *gorm.DB, adj StockAdjustment) error {
	if adj.ImpliedSold <= 0 {
		return nil
	}
	row := models.DailySales{
		ProductID: adj.ProductID,
		Day:       t.clock.Today(),
		SoldCount: adj.NewSold,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"sold_count", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily sales: %w", err)
	}
	return nil
}

// RecordCreation stores each new product's opening stock as a restock entry.
func (t *StockTracker) RecordCreation(tx *gorm.DB, products ...models.Product) error {
	if len(products) == 0 {
		return nil
	}
	entries := make([]models.ProductHistory, 0, len(products))
	for _, p := range products {
		entries = append(entries, models.ProductHistory{
			ProductID: p.ID,
			Action:    models.HistoryRestock,
			Snapshot: datatypes.NewJSONType(models.StockSnapshot{
				StockCount: p.StockCount,
				SoldCount:  p.SoldCount,
			}),
		})
	}
	if err := tx.Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to record product history: %w", err)
	}
	return nil
}

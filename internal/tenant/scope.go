package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForShop returns a GORM scope that filters by shop_id.
func ForShop(shopID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("shop_id = ?", shopID)
	}
}

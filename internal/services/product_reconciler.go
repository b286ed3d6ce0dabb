package services

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reconcilePlan is the diff between a shop's stored products and a desired list.
type reconcilePlan struct {
	Remove []uuid.UUID
	Create []dto.ProductInput
	Update []dto.ProductInput
}

func planReconcile(existing []models.Product, desired []dto.ProductInput) reconcilePlan {
	want := make(map[string]bool, len(desired))
	for _, d := range desired {
		want[d.Name] = true
	}
	have := make(map[string]bool, len(existing))
	var plan reconcilePlan
	for _, p := range existing {
		have[p.Name] = true
		if !want[p.Name] {
			plan.Remove = append(plan.Remove, p.ID)
		}
	}
	for _, d := range desired {
		if have[d.Name] {
			plan.Update = append(plan.Update, d)
		} else {
			plan.Create = append(plan.Create, d)
		}
	}
	return plan
}

// ProductReconciler replaces a shop's product set with a desired list inside
// a caller-owned transaction.
type ProductReconciler struct {
	tracker *StockTracker
}

// NewProductReconciler records creations and stock moves through tracker.
func NewProductReconciler(tracker *StockTracker) *ProductReconciler {
	return &ProductReconciler{tracker: tracker}
}

// Reconcile loads the shop's products through tx, deletes those missing from
// desired in one statement, then upserts every desired product by
// (shop_id, name) in one batch. Deletes run first so a desired product may
// reuse a name freed in the same call. desired must already be validated and
// free of duplicate names.
func (r *ProductReconciler) Reconcile(tx *gorm.DB, shopID uuid.UUID, desired []dto.ProductInput) error {
	var existing []models.Product
	if err := tx.Scopes(tenant.ForShop(shopID)).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	plan := planReconcile(existing, desired)

	if len(plan.Remove) > 0 {
		err := tx.Scopes(tenant.ForShop(shopID)).Where("id IN ?", plan.Remove).Delete(&models.Product{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete products: %w", err)
		}
	}
	if len(desired) == 0 {
		return nil
	}

	rows := make([]models.Product, 0, len(desired))
	for _, item := range plan.Update {
		rows = append(rows, newProduct(shopID, item))
	}
	for _, item := range plan.Create {
		rows = append(rows, newProduct(shopID, item))
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock_count", "metric", "image", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}

	// Rows past the updates were inserted, so their generated ids are real.
	if created := rows[len(plan.Update):]; len(created) > 0 {
		return r.tracker.RecordCreation(tx, created...)
	}
	return nil
}

func newProduct(shopID uuid.UUID, item dto.ProductInput) models.Product {
	return models.Product{
		ShopID:     shopID,
		Name:       item.Name,
		StockCount: item.StockCount,
		Metric:     item.Metric,
		Image:      item.Image,
	}
}

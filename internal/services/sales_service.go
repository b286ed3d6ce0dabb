package services

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const opFetchSales = "Error in fetching sales data"

type SalesWindow string

const (
	WindowDaily   SalesWindow = "daily"
	WindowWeekly  SalesWindow = "weekly"
	WindowMonthly SalesWindow = "monthly"
	WindowYearly  SalesWindow = "yearly"
)

// WindowStart returns the first day included in window, given today at local
// midnight.
func WindowStart(window SalesWindow, today time.Time) (time.Time, error) {
	loc := today.Location()
	y, m, d := today.Date()
	switch SalesWindow(strings.ToLower(strings.TrimSpace(string(window)))) {
	case WindowDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	case WindowWeekly:
		return time.Date(y, m, d-6, 0, 0, 0, 0, loc), nil
	case WindowMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), nil
	case WindowYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, ErrInvalidWindow
}

// SalesService answers windowed sales questions from the daily rollups.
type SalesService struct {
	db    *gorm.DB
	clock Clock
}

// NewSalesService reads rollups from db, resolving windows against clock.
func NewSalesService(db *gorm.DB, clock Clock) *SalesService {
	return &SalesService{db: db, clock: clock}
}

type soldRow struct {
	ProductID uuid.UUID
	Sold      int
}

// SalesMap returns units sold per product within window. Each rollup row holds
// the product's cumulative sold count at the end of its day, so the units sold
// in the window are the latest value inside it minus the latest value before
// it. Products with no rollup inside the window are absent from the map.
func (s *SalesService) SalesMap(ctx context.Context, window SalesWindow, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	start, err := WindowStart(window, s.clock.Today())
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int)
	if len(productIDs) == 0 {
		return out, nil
	}

	var inWindow []soldRow
	err = s.db.WithContext(ctx).Model(&models.DailySales{}).
		Select("product_id, MAX(sold_count) AS sold").
		Where("product_id IN ? AND day >= ?", productIDs, start).
		Group("product_id").
		Scan(&inWindow).Error
	if err != nil {
		return nil, wrapFailure(opFetchSales, err)
	}
	if len(inWindow) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(inWindow))
	for _, r := range inWindow {
		ids = append(ids, r.ProductID)
	}
	var before []soldRow
	err = s.db.WithContext(ctx).Model(&models.DailySales{}).
		Select("product_id, MAX(sold_count) AS sold").
		Where("product_id IN ? AND day < ?", ids, start).
		Group("product_id").
		Scan(&before).Error
	if err != nil {
		return nil, wrapFailure(opFetchSales, err)
	}
	baseline := make(map[uuid.UUID]int, len(before))
	for _, r := range before {
		baseline[r.ProductID] = r.Sold
	}

	for _, r := range inWindow {
		out[r.ProductID] = max(0, r.Sold-baseline[r.ProductID])
	}
	return out, nil
}

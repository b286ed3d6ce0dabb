package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/testutil"
)

type testEnv struct {
	ctx      context.Context
	db       *gorm.DB
	mr       *miniredis.Miniredis
	cache    cache.Cache
	clock    Clock
	keys     cache.Keys
	shops    *ShopDirectory
	products *ProductService
	sales    *SalesService
	actions  *Actions
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c, mr := testutil.OpenCache(t)
	env := newTestEnvWithCache(t, c)
	env.mr = mr
	return env
}

func newTestEnvWithCache(t *testing.T, c cache.Cache) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	env := &testEnv{
		ctx:   context.Background(),
		db:    db,
		cache: c,
		keys:  cache.Keys{Prefix: "test"},
		now:   time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC),
	}
	env.clock = Clock{loc: time.UTC, now: func() time.Time { return env.now }}
	env.useTxRunner(database.NewTxRunner(db, 1, time.Second, 5*time.Second))
	return env
}

// useTxRunner rebuilds the services on txr.
func (e *testEnv) useTxRunner(txr *database.TxRunner) {
	tracker := NewStockTracker(e.clock)
	e.shops = NewShopDirectory(e.db, e.cache, e.keys, 0, txr, NewProductReconciler(tracker))
	e.products = NewProductService(txr, tracker, e.shops)
	e.sales = NewSalesService(e.db, e.clock)
	e.actions = NewActions(e.shops, e.products, e.sales, ModeRaise)
}

func (e *testEnv) mustCreateShop(t *testing.T, name, email string) *models.Shop {
	t.Helper()
	shop, err := e.shops.Create(e.ctx, &dto.CreateShopRequest{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create shop %q: %v", name, err)
	}
	return shop
}

func (e *testEnv) mustSetProducts(t *testing.T, shop *models.Shop, items ...dto.ProductInput) *models.Shop {
	t.Helper()
	if items == nil {
		items = []dto.ProductInput{}
	}
	updated, err := e.shops.Update(e.ctx, &dto.UpdateShopRequest{Email: shop.Email, Name: shop.Name, Products: items})
	if err != nil {
		t.Fatalf("set products: %v", err)
	}
	return updated
}

func productByName(t *testing.T, shop *models.Shop, name string) models.Product {
	t.Helper()
	for _, p := range shop.Products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("shop %q has no product %q", shop.Name, name)
	return models.Product{}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

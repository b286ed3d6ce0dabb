package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// Mode selects what an entry point does with a failure.
type Mode int

const (
	// ModeRaise returns the failure to the caller.
	ModeRaise Mode = iota
	// ModeFallback logs and reports the failure and returns a nil error. The
	// failure is still available on Outcome.Err.
	ModeFallback
)

// Outcome tells a found value, an absent one and a failure apart in either mode.
type Outcome[T any] struct {
	Value T
	Found bool
	Err   error
}

// ValueOr returns the value when one was found, otherwise fallback.
func (o Outcome[T]) ValueOr(fallback T) T {
	if o.Found && o.Err == nil {
		return o.Value
	}
	return fallback
}

// Actions is the entry point set used by handlers and middleware.
type Actions struct {
	shops    *ShopDirectory
	products *ProductService
	sales    *SalesService
	mode     Mode
}

// NewActions returns entry points that report failures according to mode.
func NewActions(shops *ShopDirectory, products *ProductService, sales *SalesService, mode Mode) *Actions {
	return &Actions{shops: shops, products: products, sales: sales, mode: mode}
}

// WithMode returns a copy of a using mode.
func (a *Actions) WithMode(mode Mode) *Actions {
	cp := *a
	cp.mode = mode
	return &cp
}

func (a *Actions) Mode() Mode {
	return a.mode
}

func (a *Actions) CreateShop(ctx context.Context, req *dto.CreateShopRequest) (Outcome[*models.Shop], error) {
	shop, err := a.shops.Create(ctx, req)
	return settle(a.mode, opCreateShop, shop, err, false)
}

func (a *Actions) UpdateShop(ctx context.Context, req *dto.UpdateShopRequest) (Outcome[*models.Shop], error) {
	shop, err := a.shops.Update(ctx, req)
	return settle(a.mode, opUpdateShop, shop, err, false)
}

// GetShopByEmail reports an unknown email as Found=false, not as an error.
func (a *Actions) GetShopByEmail(ctx context.Context, email string) (Outcome[*models.Shop], error) {
	shop, err := a.shops.GetByEmail(ctx, email)
	return settle(a.mode, opFetchShop, shop, err, true)
}

// GetShopByName reports an unknown name as Found=false, not as an error.
func (a *Actions) GetShopByName(ctx context.Context, name string) (Outcome[*models.Shop], error) {
	shop, err := a.shops.GetByName(ctx, name)
	return settle(a.mode, opFetchShop, shop, err, true)
}

func (a *Actions) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (Outcome[*models.Product], error) {
	product, err := a.products.Create(ctx, req)
	return settle(a.mode, opCreateProduct, product, err, false)
}

func (a *Actions) UpdateProduct(ctx context.Context, req *dto.UpdateProductRequest) (Outcome[*models.Product], error) {
	product, err := a.products.Update(ctx, req)
	return settle(a.mode, opUpdateProduct, product, err, false)
}

func (a *Actions) GetSalesMap(ctx context.Context, window SalesWindow, productIDs []uuid.UUID) (Outcome[map[uuid.UUID]int], error) {
	sales, err := a.sales.SalesMap(ctx, window, productIDs)
	return settle(a.mode, opFetchSales, sales, err, false)
}

func settle[T any](mode Mode, op string, value T, err error, absentIsNotFound bool) (Outcome[T], error) {
	if err == nil {
		return Outcome[T]{Value: value, Found: true}, nil
	}
	if absentIsNotFound && errors.Is(err, ErrNotFound) {
		return Outcome[T]{}, nil
	}
	if mode == ModeRaise {
		return Outcome[T]{Err: err}, err
	}
	slog.Error("operation failed", "op", op, "error", err)
	sentry.CaptureException(err)
	return Outcome[T]{Err: err}, nil
}

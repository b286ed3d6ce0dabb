package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	opFetchShop  = "Error in fetching shop"
	opCreateShop = "Error in creating shop"
	opUpdateShop = "Error in updating shop"
)

// ShopDirectory serves shop records from the cache with the database as the
// source of truth. Two logical maps live in the cache: name -> email and
// email -> full record. Every write path leaves both consistent with what it
// just committed; any miss or cache failure falls back to the database.
//
// Concurrent updates to the same shop are not serialized here. Their cache
// write-throughs race and the last one to reach the cache wins.
type ShopDirectory struct {
	db         *gorm.DB
	cache      cache.Cache
	keys       cache.Keys
	ttl        time.Duration
	txr        *database.TxRunner
	reconciler *ProductReconciler
}

// NewShopDirectory caches shops in c for ttl under keys. A zero ttl keeps
// entries until they are invalidated.
func NewShopDirectory(db *gorm.DB, c cache.Cache, keys cache.Keys, ttl time.Duration, txr *database.TxRunner, reconciler *ProductReconciler) *ShopDirectory {
	if c == nil {
		c = cache.Disabled{}
	}
	return &ShopDirectory{
		db:         db,
		cache:      c,
		keys:       keys,
		ttl:        ttl,
		txr:        txr,
		reconciler: reconciler,
	}
}

// GetByEmail returns ErrShopNotFound when no shop is registered for email.
func (d *ShopDirectory) GetByEmail(ctx context.Context, email string) (*models.Shop, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrShopNotFound
	}

	if shop, ok := d.cachedRecord(ctx, email); ok {
		return shop, nil
	}

	var shop models.Shop
	err := d.db.WithContext(ctx).Preload("Products").Where("email = ?", email).First(&shop).Error
	if database.IsNotFound(err) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, wrapFailure(opFetchShop, err)
	}

	d.writeThrough(ctx, &shop, "")
	return &shop, nil
}

// GetByName resolves name -> email through the cache and then delegates to
// GetByEmail. A name entry pointing at a record that no longer carries the
// name is stale; it is dropped and the database is asked instead.
func (d *ShopDirectory) GetByName(ctx context.Context, name string) (*models.Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrShopNotFound
	}

	if email, ok := d.cacheGet(ctx, d.keys.ShopName(name)); ok {
		shop, err := d.GetByEmail(ctx, email)
		switch {
		case err == nil && shop.Name == name:
			return shop, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, err
		}
		d.cacheDelete(ctx, d.keys.ShopName(name))
	}

	var shop models.Shop
	err := d.db.WithContext(ctx).Preload("Products").Where("name = ?", name).First(&shop).Error
	if database.IsNotFound(err) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, wrapFailure(opFetchShop, err)
	}

	d.writeThrough(ctx, &shop, "")
	return &shop, nil
}

// Create registers a new shop. A taken name is reported before any write.
func (d *ShopDirectory) Create(ctx context.Context, req *dto.CreateShopRequest) (*models.Shop, error) {
	name, err := normalizeShopName(req.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if err := d.ensureNameFree(ctx, name); err != nil {
		return nil, err
	}

	shop := models.Shop{Name: name, Email: email}
	if err := d.db.WithContext(ctx).Create(&shop).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, d.classifyDuplicate(ctx, email)
		}
		return nil, wrapFailure(opCreateShop, err)
	}
	shop.Products = []models.Product{}

	slog.Info("shop created", "op", "create_shop", "shop_id", shop.ID.String(), "shop_email", shop.Email)
	d.writeThrough(ctx, &shop, "")
	return &shop, nil
}

// Update renames the shop and, when req.Products is non-nil, reconciles its
// products, all in one bounded transaction. On commit the old name entry is
// dropped and both cache entries are rewritten from the committed state.
func (d *ShopDirectory) Update(ctx context.Context, req *dto.UpdateShopRequest) (*models.Shop, error) {
	current, err := d.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	name, err := normalizeShopName(req.Name)
	if err != nil {
		return nil, err
	}
	products, err := normalizeProductInputs(req.Products)
	if err != nil {
		return nil, err
	}

	if name != current.Name {
		if err := d.ensureNameFree(ctx, name); err != nil {
			return nil, err
		}
	}

	var (
		updated models.Shop
		oldName string
	)
	err = d.txr.Run(ctx, func(tx *gorm.DB) error {
		var stored models.Shop
		if err := tx.Where("id = ?", current.ID).First(&stored).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrShopNotFound
			}
			return err
		}
		oldName = stored.Name

		if stored.Name != name {
			if err := tx.Model(&stored).Update("name", name).Error; err != nil {
				if database.IsDuplicate(err) {
					return ErrShopNameTaken
				}
				return err
			}
		}

		if products != nil {
			if err := d.reconciler.Reconcile(tx, stored.ID, products); err != nil {
				if database.IsDuplicate(err) {
					return ErrProductNameTaken
				}
				return err
			}
		}

		return tx.Preload("Products").Where("id = ?", stored.ID).First(&updated).Error
	})
	if err != nil {
		return nil, wrapFailure(opUpdateShop, err)
	}

	slog.Info("shop updated", "op", "update_shop", "shop_id", updated.ID.String(),
		"renamed", oldName != updated.Name, "products", len(updated.Products))
	d.writeThrough(ctx, &updated, oldName)
	return &updated, nil
}

// Refresh reloads a shop by id and rewrites its cache entries. Used after
// product writes that change the nested record.
func (d *ShopDirectory) Refresh(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := d.db.WithContext(ctx).Preload("Products").Where("id = ?", shopID).First(&shop).Error
	if database.IsNotFound(err) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, wrapFailure(opFetchShop, err)
	}
	d.writeThrough(ctx, &shop, "")
	return &shop, nil
}

// ensureNameFree returns ErrShopNameTaken if any shop holds name. The lookup
// goes through GetByName, so a holder found only in the database is cached
// before the conflict is returned.
func (d *ShopDirectory) ensureNameFree(ctx context.Context, name string) error {
	_, err := d.GetByName(ctx, name)
	switch {
	case err == nil:
		return ErrShopNameTaken
	case errors.Is(err, ErrNotFound):
		return nil
	}
	return err
}

func (d *ShopDirectory) classifyDuplicate(ctx context.Context, email string) error {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.Shop{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return wrapFailure(opCreateShop, err)
	}
	if count > 0 {
		return ErrShopEmailTaken
	}
	return ErrShopNameTaken
}

func (d *ShopDirectory) cachedRecord(ctx context.Context, email string) (*models.Shop, bool) {
	key := d.keys.ShopEmail(email)
	raw, ok := d.cacheGet(ctx, key)
	if !ok {
		return nil, false
	}
	var shop models.Shop
	if err := json.Unmarshal([]byte(raw), &shop); err != nil {
		slog.Warn("discarding unreadable cache entry", "key", key, "error", err)
		d.cacheDelete(ctx, key)
		return nil, false
	}
	return &shop, true
}

func (d *ShopDirectory) cacheGet(ctx context.Context, key string) (string, bool) {
	val, ok, err := d.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed, using database", "key", key, "error", err)
		return "", false
	}
	return val, ok
}

func (d *ShopDirectory) cacheDelete(ctx context.Context, keys ...string) {
	if err := d.cache.Delete(ctx, keys...); err != nil {
		slog.Error("cache delete failed", "op", "cache_delete", "keys", keys, "error", err)
	}
}

// writeThrough writes both index entries for shop. When oldName is set and
// differs from the current name its index entry is removed first. A failed
// write is logged and the record entry is dropped so the next read goes to
// the database instead of serving a stale record.
func (d *ShopDirectory) writeThrough(ctx context.Context, shop *models.Shop, oldName string) {
	if oldName != "" && oldName != shop.Name {
		d.cacheDelete(ctx, d.keys.ShopName(oldName))
	}

	payload, err := json.Marshal(shop)
	if err != nil {
		slog.Error("failed to encode shop for cache", "op", "cache_write", "shop_email", shop.Email, "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.cache.Set(gctx, d.keys.ShopName(shop.Name), shop.Email, d.ttl)
	})
	g.Go(func() error {
		return d.cache.Set(gctx, d.keys.ShopEmail(shop.Email), string(payload), d.ttl)
	})
	if err := g.Wait(); err != nil {
		slog.Error("cache write-through failed", "op", "cache_write", "shop_email", shop.Email, "error", err)
		d.cacheDelete(ctx, d.keys.ShopEmail(shop.Email))
	}
}

package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	opCreateProduct = "Error in creating product"
	opUpdateProduct = "Error in updating product"
)

type ProductService struct {
	txr       *database.TxRunner
	tracker   *StockTracker
	directory *ShopDirectory
}

// NewProductService runs product writes on txr and refreshes the owning
// shop through directory after commit.
func NewProductService(txr *database.TxRunner, tracker *StockTracker, directory *ShopDirectory) *ProductService {
	return &ProductService{txr: txr, tracker: tracker, directory: directory}
}

// Create adds a product to a shop and records its opening stock.
func (s *ProductService) Create(ctx context.Context, req *dto.CreateProductRequest) (*models.Product, error) {
	in, err := normalizeProductInput(dto.ProductInput{
		Name:       req.Name,
		StockCount: req.StockCount,
		Metric:     req.Metric,
		Image:      req.Image,
	})
	if err != nil {
		return nil, err
	}

	product := models.Product{
		ShopID:     req.ShopID,
		Name:       in.Name,
		StockCount: in.StockCount,
		Metric:     in.Metric,
		Image:      in.Image,
	}
	err = s.txr.Run(ctx, func(tx *gorm.DB) error {
		var shopCount int64
		if err := tx.Model(&models.Shop{}).Where("id = ?", req.ShopID).Count(&shopCount).Error; err != nil {
			return err
		}
		if shopCount == 0 {
			return ErrShopNotFound
		}

		var nameCount int64
		if err := tx.Model(&models.Product{}).Scopes(tenant.ForShop(req.ShopID)).Where("name = ?", in.Name).Count(&nameCount).Error; err != nil {
			return err
		}
		if nameCount > 0 {
			return ErrProductNameTaken
		}

		if err := tx.Create(&product).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrProductNameTaken
			}
			return err
		}
		return s.tracker.RecordCreation(tx, product)
	})
	if err != nil {
		return nil, wrapFailure(opCreateProduct, err)
	}

	slog.Info("product created", "op", "create_product", "shop_id", product.ShopID.String(), "product_id", product.ID.String())
	s.refreshShop(ctx, product.ShopID)
	return &product, nil
}

// Update edits a product of the given shop. A stock decrease is counted as
// sold units and rolled up for today; a product of another shop is not found.
func (s *ProductService) Update(ctx context.Context, req *dto.UpdateProductRequest) (*models.Product, error) {
	var err error
	var name *string
	if req.Name != nil {
		n, err := normalizeProductName(*req.Name)
		if err != nil {
			return nil, err
		}
		name = &n
	}
	if req.StockCount != nil {
		if _, err = normalizeStock(*req.StockCount); err != nil {
			return nil, err
		}
	}
	var metric *models.Metric
	if req.Metric != nil {
		m, err := normalizeMetric(*req.Metric)
		if err != nil {
			return nil, err
		}
		metric = &m
	}
	var image *string
	if req.Image != nil {
		if image, err = normalizeImage(req.Image); err != nil {
			return nil, err
		}
	}

	var product models.Product
	err = s.txr.Run(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(tenant.ForShop(req.ShopID)).
			Where("id = ?", req.ID).
			First(&product).Error
		if database.IsNotFound(err) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if name != nil && *name != product.Name {
			var taken int64
			if err := tx.Model(&models.Product{}).
				Scopes(tenant.ForShop(product.ShopID)).
				Where("name = ? AND id <> ?", *name, product.ID).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrProductNameTaken
			}
			product.Name = *name
		}
		if metric != nil {
			product.Metric = *metric
		}
		if req.Image != nil {
			product.Image = image
		}

		var adj StockAdjustment
		if req.StockCount != nil {
			adj = s.tracker.Adjust(&product, *req.StockCount)
		}

		if err := tx.Save(&product).Error; err != nil {
			if database.IsDuplicate(err) {
				return ErrProductNameTaken
			}
			return err
		}
		return s.tracker.RecordSale(tx, adj)
	})
	if err != nil {
		return nil, wrapFailure(opUpdateProduct, err)
	}

	slog.Info("product updated", "op", "update_product", "product_id", product.ID.String(),
		"stock_count", product.StockCount, "sold_count", product.SoldCount)
	s.refreshShop(ctx, product.ShopID)
	return &product, nil
}

// refreshShop rewrites the owning shop's cache entries. The product write has
// already committed, so a failure here only costs a cache miss later.
func (s *ProductService) refreshShop(ctx context.Context, shopID uuid.UUID) {
	if _, err := s.directory.Refresh(ctx, shopID); err != nil {
		slog.Error("failed to refresh shop cache", "op", "refresh_shop", "shop_id", shopID.String(), "error", err)
	}
}

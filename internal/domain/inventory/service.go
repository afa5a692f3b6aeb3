// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProductInvalidator drops cached reads of a product after its stock changed
type ProductInvalidator interface {
	InvalidateProduct(ctx context.Context, id uint)
}

// Service keeps product stock and its movement ledger
type Service struct {
	db          *gorm.DB
	config      *config.Config
	log         *logrus.Logger
	invalidator ProductInvalidator
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, invalidator ProductInvalidator) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		log:         log,
		invalidator: invalidator,
	}
}

// StockAdjustmentRequest represents an admin stock correction
type StockAdjustmentRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Note  string `json:"note" binding:"max=500"`
}

// Reserve takes quantity units of a product on the caller's transaction.
// The decrement is conditional so concurrent orders can never drive stock
// below zero.
func (s *Service) Reserve(tx *gorm.DB, productID uint, quantity int, reference string) error {
	if quantity <= 0 {
		return apperr.Validation("reserve quantity must be positive")
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var p product.Product
		if err := tx.Select("id", "name", "stock").First(&p, productID).Error; err != nil {
			return apperr.FromGorm(err, "product")
		}
		return apperr.InsufficientStock(p.Name, p.Stock, quantity)
	}

	return s.record(tx, productID, MovementOrderReserve, -quantity, reference, "", nil)
}

// Release returns quantity units of a product on the caller's transaction
func (s *Service) Release(tx *gorm.DB, productID uint, quantity int, reference string) error {
	if quantity <= 0 {
		return apperr.Validation("release quantity must be positive")
	}

	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to release stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product")
	}

	return s.record(tx, productID, MovementOrderRelease, quantity, reference, "", nil)
}

// UpdateProductStock decrements stock by quantity outside the order flow
func (s *Service) UpdateProductStock(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		s.log.WithFields(logrus.Fields{"product_id": productID, "quantity": quantity}).Warn("invalid stock decrement")
		return apperr.Validation("quantity must be positive")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&product.Product{}).
			Where("id = ? AND stock >= ?", productID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var p product.Product
			if err := tx.Select("id", "name", "stock").First(&p, productID).Error; err != nil {
				return apperr.FromGorm(err, "product")
			}
			return apperr.InsufficientStock(p.Name, p.Stock, quantity)
		}
		return s.record(tx, productID, MovementSale, -quantity, "", "", nil)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"product_id": productID, "quantity": quantity}).Info("product stock decremented")
	s.invalidate(ctx, productID)
	return nil
}

// AdjustStock applies a signed correction. The result may not go below zero.
func (s *Service) AdjustStock(ctx context.Context, productID uint, delta int, note string, by uint) (*StockMovement, error) {
	if delta == 0 {
		return nil, apperr.Validation("adjustment must not be zero")
	}

	var movement *StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&product.Product{}).Where("id = ?", productID)
		if delta < 0 {
			q = q.Where("stock >= ?", -delta)
		}
		result := q.Update("stock", gorm.Expr("stock + ?", delta))
		if result.Error != nil {
			return fmt.Errorf("failed to adjust stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var p product.Product
			if err := tx.Select("id", "name", "stock").First(&p, productID).Error; err != nil {
				return apperr.FromGorm(err, "product")
			}
			return apperr.Validation("stock of %q cannot go below zero (current %d, change %d)", p.Name, p.Stock, delta)
		}

		m, err := s.recordMovement(tx, productID, MovementAdjustment, delta, "", note, &by)
		movement = m
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": productID,
		"delta":      delta,
		"by":         by,
	}).Info("product stock adjusted")
	s.invalidate(ctx, productID)
	return movement, nil
}

// GetMovements returns a product's ledger, newest first
func (s *Service) GetMovements(ctx context.Context, productID uint) ([]StockMovement, error) {
	var movements []StockMovement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}
	return movements, nil
}

// GetLowStockProducts returns active products with stock at or below
// threshold, lowest first. A non-positive threshold uses the configured one.
func (s *Service) GetLowStockProducts(ctx context.Context, threshold int) ([]product.Product, error) {
	if threshold <= 0 {
		threshold = s.config.Store.LowStockThreshold
	}

	var products []product.Product
	err := s.db.WithContext(ctx).
		Scopes(product.ActiveProducts).
		Where("stock <= ?", threshold).
		Order("stock ASC, name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock products: %w", err)
	}
	return products, nil
}

// InvalidateProducts drops cached reads for products whose stock changed
// inside a committed transaction.
func (s *Service) InvalidateProducts(ctx context.Context, ids ...uint) {
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
}

func (s *Service) invalidate(ctx context.Context, id uint) {
	if s.invalidator != nil {
		s.invalidator.InvalidateProduct(ctx, id)
	}
}

func (s *Service) record(tx *gorm.DB, productID uint, kind MovementType, quantity int, reference, note string, by *uint) error {
	_, err := s.recordMovement(tx, productID, kind, quantity, reference, note, by)
	return err
}

func (s *Service) recordMovement(tx *gorm.DB, productID uint, kind MovementType, quantity int, reference, note string, by *uint) (*StockMovement, error) {
	var stock int
	if err := tx.Model(&product.Product{}).Select("stock").Where("id = ?", productID).Scan(&stock).Error; err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}

	movement := &StockMovement{
		ProductID:  productID,
		Type:       kind,
		Quantity:   quantity,
		StockAfter: stock,
		Reference:  reference,
		Note:       note,
		CreatedBy:  by,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return movement, nil
}

package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CartAdder puts a product into a cart
type CartAdder interface {
	AddToCartForUser(ctx context.Context, productID uint, quantity int, sessionID string, userID uint) error
}

// Service handles favorite business logic
type Service struct {
	db    *gorm.DB
	log   *logrus.Logger
	carts CartAdder
}

// NewService creates a new favorite service
func NewService(db *gorm.DB, log *logrus.Logger, carts CartAdder) *Service {
	return &Service{db: db, log: log, carts: carts}
}

// AddFavoriteRequest represents add to favorites request
type AddFavoriteRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

// MoveToCartRequest represents move to cart request
type MoveToCartRequest struct {
	Quantity int `json:"quantity"`
}

// activeFavorites joins favorites to products that are still on sale
func activeFavorites(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN products ON products.id = favorites.product_id").
		Where("products.is_active = ?", true)
}

// AddFavorite marks a product as a favorite. Adding it twice is a no-op.
func (s *Service) AddFavorite(ctx context.Context, userID, productID uint) (*Favorite, error) {
	db := s.db.WithContext(ctx)

	var p product.Product
	if err := db.Scopes(product.ActiveProducts).Select("id").First(&p, productID).Error; err != nil {
		return nil, apperr.FromGorm(err, "product")
	}

	var fav Favorite
	err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&fav).Error
	if err == nil {
		return &fav, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check favorites: %w", err)
	}

	fav = Favorite{UserID: userID, ProductID: productID}
	if err := db.Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent add of the same product
			if err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&fav).Error; err != nil {
				return nil, fmt.Errorf("failed to load favorite: %w", err)
			}
			return &fav, nil
		}
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).Debug("favorite added")
	return &fav, nil
}

// RemoveFavorite unmarks a product; false when it was not a favorite
func (s *Service) RemoveFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&Favorite{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetFavorites returns the user's favorites whose product is still active,
// newest first
func (s *Service) GetFavorites(ctx context.Context, userID uint) ([]Favorite, error) {
	var favorites []Favorite
	err := s.db.WithContext(ctx).
		Scopes(activeFavorites).
		Preload("Product").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve favorites: %w", err)
	}
	return favorites, nil
}

// IsFavorite reports whether the product is among the user's favorites
func (s *Service) IsFavorite(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// GetFavoriteCount counts favorites with an active product
func (s *Service) GetFavoriteCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Favorite{}).
		Scopes(activeFavorites).
		Where("favorites.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

// MoveToCart adds a favorite product to the cart and unmarks it
func (s *Service) MoveToCart(ctx context.Context, userID, productID uint, quantity int, sessionID string) error {
	ok, err := s.IsFavorite(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("favorite")
	}

	if quantity < 1 {
		quantity = 1
	}
	if err := s.carts.AddToCartForUser(ctx, productID, quantity, sessionID, userID); err != nil {
		return err
	}

	_, err = s.RemoveFavorite(ctx, userID, productID)
	return err
}

// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProductNotFound is returned when a missing or inactive product is added
var ErrProductNotFound = apperr.NotFound("product")

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		log:    log,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

// RemoveCartItemRequest represents remove cart item request
type RemoveCartItemRequest struct {
	CartItemID uint `json:"cartItemId" binding:"required"`
}

// findCart returns the active cart for the session, falling back to the
// user's most recent active cart. Returns gorm.ErrRecordNotFound when
// neither exists.
func findCart(tx *gorm.DB, sessionID string, userID *uint, lock bool) (*Cart, error) {
	q := func() *gorm.DB {
		db := tx.Scopes(ActiveCarts)
		if lock {
			db = db.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return db
	}

	var cart Cart
	err := q().Where("session_id = ?", sessionID).Order("id DESC").First(&cart).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) || userID == nil {
		return &cart, err
	}

	err = q().Where("user_id = ?", *userID).Order("updated_at DESC, id DESC").First(&cart).Error
	return &cart, err
}

func getOrCreateCart(tx *gorm.DB, sessionID string, userID *uint, lock bool) (*Cart, error) {
	if sessionID == "" {
		return nil, apperr.Validation("session is required")
	}

	cart, err := findCart(tx, sessionID, userID, lock)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart, err = createCart(tx, sessionID, userID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// another request created the session's cart first
			cart, err = findCart(tx, sessionID, userID, lock)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if cart.UserID == nil && userID != nil {
		err := tx.Transaction(func(inner *gorm.DB) error {
			var err error
			cart, err = attachCart(inner, cart, *userID)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// createCart inserts a new active cart inside a savepoint, so a unique
// violation leaves the caller's transaction usable.
func createCart(tx *gorm.DB, sessionID string, userID *uint) (*Cart, error) {
	cart := &Cart{SessionID: sessionID, UserID: userID, IsActive: true}
	err := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Create(cart).Error
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// attachCart hands cart to userID. When the user already owns another
// active cart, cart's lines are merged into it and cart is deactivated,
// so a user never holds two active carts. Returns the cart that survives.
func attachCart(tx *gorm.DB, cart *Cart, userID uint) (*Cart, error) {
	var owned Cart
	err := tx.Scopes(ActiveCarts).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND id <> ?", userID, cart.ID).
		Order("updated_at DESC, id DESC").
		First(&owned).Error
	switch {
	case err == nil:
		if err := mergeCarts(tx, &owned, cart); err != nil {
			return nil, err
		}
		return &owned, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		err := tx.Model(cart).Updates(map[string]interface{}{"user_id": userID, "updated_at": time.Now()}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to attach cart to user: %w", err)
		}
		cart.UserID = &userID
		return cart, nil
	default:
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}
}

// mergeCarts moves the active lines of src into dst and deactivates src.
// A product present in both keeps one line with the summed quantity and
// the price of whichever line was added first.
func mergeCarts(tx *gorm.DB, dst, src *Cart) error {
	var lines []CartItem
	if err := tx.Scopes(ActiveItems).Where("cart_id = ?", src.ID).Order("id ASC").Find(&lines).Error; err != nil {
		return fmt.Errorf("failed to read cart lines: %w", err)
	}

	for _, line := range lines {
		var existing CartItem
		err := tx.Scopes(ActiveItems).
			Where("cart_id = ? AND product_id = ?", dst.ID, line.ProductID).
			First(&existing).Error
		switch {
		case err == nil:
			price := existing.Price
			if line.CreatedAt.Before(existing.CreatedAt) {
				price = line.Price
			}
			err = tx.Model(&existing).Updates(map[string]interface{}{
				"quantity": existing.Quantity + line.Quantity,
				"price":    price,
			}).Error
			if err == nil {
				err = tx.Delete(&CartItem{}, line.ID).Error
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = tx.Model(&CartItem{}).Where("id = ?", line.ID).Update("cart_id", dst.ID).Error
		}
		if err != nil {
			return fmt.Errorf("failed to merge cart line: %w", err)
		}
	}

	now := time.Now()
	if err := tx.Model(src).Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
		return fmt.Errorf("failed to deactivate merged cart: %w", err)
	}
	src.IsActive = false
	if err := tx.Model(dst).Update("updated_at", now).Error; err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}

// GetOrCreateCart returns the active cart for the session, creating it when absent
func (s *Service) GetOrCreateCart(ctx context.Context, sessionID string, userID *uint) (*Cart, error) {
	return getOrCreateCart(s.db.WithContext(ctx), sessionID, userID, false)
}

// AddToCart adds quantity units of a product to the session's cart. An
// existing line is incremented and keeps the price it was added with.
func (s *Service) AddToCart(ctx context.Context, productID uint, quantity int, sessionID string, userID *uint) (*CartItem, error) {
	if quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	var item CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := getOrCreateCart(tx, sessionID, userID, true)
		if err != nil {
			return err
		}

		var prod product.Product
		if err := tx.Scopes(product.ActiveProducts).First(&prod, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		if !prod.CanSupply(quantity) {
			return apperr.InsufficientStock(prod.Name, prod.Stock, quantity)
		}

		err = tx.Scopes(ActiveItems).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			First(&item).Error
		switch {
		case err == nil:
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
			item.Quantity += quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				Price:     prod.Price,
				IsActive:  true,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		default:
			return fmt.Errorf("failed to load cart item: %w", err)
		}

		return tx.Model(cart).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   quantity,
	}).Debug("item added to cart")

	return &item, nil
}

// AddToCartForUser is AddToCart for a logged-in user
func (s *Service) AddToCartForUser(ctx context.Context, productID uint, quantity int, sessionID string, userID uint) error {
	_, err := s.AddToCart(ctx, productID, quantity, sessionID, &userID)
	return err
}

// ownedItem loads an active line of an active cart belonging to the
// session or user.
func ownedItem(tx *gorm.DB, cartItemID uint, sessionID string, userID *uint) (*CartItem, error) {
	q := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Scopes(ActiveItems, ActiveCarts).
		Where("cart_items.id = ?", cartItemID)
	if userID != nil {
		q = q.Where("(carts.session_id = ? OR carts.user_id = ?)", sessionID, *userID)
	} else {
		q = q.Where("carts.session_id = ?", sessionID)
	}

	var item CartItem
	if err := q.Preload("Product").First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem overwrites a line's quantity. Returns false when the line
// is not in the caller's cart or stock cannot cover the new quantity.
func (s *Service) UpdateCartItem(ctx context.Context, sessionID string, userID *uint, cartItemID uint, quantity int) (bool, error) {
	if quantity < 1 {
		return false, apperr.Validation("quantity must be at least 1")
	}

	db := s.db.WithContext(ctx)
	item, err := ownedItem(db, cartItemID, sessionID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load cart item: %w", err)
	}

	if item.Product == nil || !item.Product.CanSupply(quantity) {
		return false, nil
	}

	if err := db.Model(item).Update("quantity", quantity).Error; err != nil {
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}
	return true, nil
}

// RemoveFromCart deletes a line from the caller's cart
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, userID *uint, cartItemID uint) (bool, error) {
	db := s.db.WithContext(ctx)
	item, err := ownedItem(db, cartItemID, sessionID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load cart item: %w", err)
	}

	if err := db.Delete(&CartItem{}, item.ID).Error; err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return true, nil
}

// ClearCart deletes every line of the session's cart
func (s *Service) ClearCart(ctx context.Context, sessionID string, userID *uint) (bool, error) {
	db := s.db.WithContext(ctx)
	cart, err := findCart(db, sessionID, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if err := db.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return false, fmt.Errorf("failed to clear cart: %w", err)
	}
	return true, nil
}

// GetCartView returns the cart with product details. Lines whose product
// row is gone are left out.
func (s *Service) GetCartView(ctx context.Context, sessionID string, userID *uint) (*View, error) {
	db := s.db.WithContext(ctx)
	cart, err := findCart(db, sessionID, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newView(sessionID, []ItemView{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	var items []CartItem
	err = db.Scopes(ActiveItems).
		Where("cart_id = ?", cart.ID).
		Preload("Product").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart items: %w", err)
	}

	lines := make([]ItemView, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.Product == nil {
			continue
		}
		lines = append(lines, ItemView{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.Product.Name,
			ProductImage: item.Product.DisplayImage(),
			ProductCode:  item.Product.ProductCode,
			Quantity:     item.Quantity,
			Price:        item.Price,
			TotalPrice:   item.TotalPrice(),
			Stock:        item.Product.Stock,
			IsAvailable:  item.Product.IsActive && item.Product.CanSupply(item.Quantity),
		})
	}

	view := newView(cart.SessionID, lines)
	view.ID = cart.ID
	view.UserID = cart.UserID
	return view, nil
}

// GetCartSummary returns line count and total for the session's cart
func (s *Service) GetCartSummary(ctx context.Context, sessionID string, userID *uint) (*Summary, error) {
	view, err := s.GetCartView(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		TotalItems: view.TotalItems,
		TotalPrice: view.TotalPrice,
		IsEmpty:    view.IsEmpty,
	}, nil
}

// GetCartItemCount returns the number of lines in the session's cart
func (s *Service) GetCartItemCount(ctx context.Context, sessionID string, userID *uint) (int, error) {
	db := s.db.WithContext(ctx)
	cart, err := findCart(db, sessionID, userID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	var count int64
	if err := db.Model(&CartItem{}).Scopes(ActiveItems).Where("cart_id = ?", cart.ID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return int(count), nil
}

// TransferCartToUser attaches the session's cart to a user after login.
// Lines are merged into the user's existing active cart when there is one.
func (s *Service) TransferCartToUser(ctx context.Context, sessionID string, userID uint) (bool, error) {
	var kept *Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guest Cart
		err := tx.Scopes(ActiveCarts).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionID).
			Order("id DESC").
			First(&guest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		kept, err = attachCart(tx, &guest, userID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to transfer cart: %w", err)
	}
	if kept == nil {
		return false, nil
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"user_id":    userID,
		"cart_id":    kept.ID,
	}).Info("guest cart transferred to user")
	return true, nil
}

// GetUserCartItems returns the active lines of the user's active carts
func (s *Service) GetUserCartItems(ctx context.Context, userID uint) ([]CartItem, error) {
	return s.GetUserCartItemsTx(s.db.WithContext(ctx), userID)
}

// GetUserCartItemsTx is GetUserCartItems on an open transaction
func (s *Service) GetUserCartItemsTx(tx *gorm.DB, userID uint) ([]CartItem, error) {
	var items []CartItem
	err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Scopes(ActiveItems, ActiveCarts).
		Where("carts.user_id = ?", userID).
		Preload("Product").
		Order("cart_items.id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart items: %w", err)
	}
	return items, nil
}

// ClearUserCart deletes the active lines of the user's active carts
func (s *Service) ClearUserCart(ctx context.Context, userID uint) (bool, error) {
	return s.ClearUserCartTx(s.db.WithContext(ctx), userID)
}

// ClearUserCartTx is ClearUserCart on an open transaction
func (s *Service) ClearUserCartTx(tx *gorm.DB, userID uint) (bool, error) {
	carts := tx.Model(&Cart{}).Select("id").Where("user_id = ? AND is_active = ?", userID, true)
	result := tx.Scopes(ActiveItems).Where("cart_id IN (?)", carts).Delete(&CartItem{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to clear user cart: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

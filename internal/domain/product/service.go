// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/infrastructure/cache"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Cache keys and lifetimes for catalog reads
const (
	keyAllProducts       = "all_products"
	keyFeaturedProducts  = "featured_products"
	keyProductStatistics = "product_statistics"
	prefixProducts       = "products_"

	ttlAllProducts = 30 * time.Minute
	ttlProduct     = 15 * time.Minute
	ttlByCategory  = 20 * time.Minute
	ttlByBrand     = 20 * time.Minute
	ttlFeatured    = 15 * time.Minute
	ttlTopSelling  = 20 * time.Minute
	ttlNewest      = 15 * time.Minute
	ttlRelated     = 30 * time.Minute
	ttlStatistics  = 60 * time.Minute
)

// orders in this status do not count as sales
const cancelledOrderStatus = "cancelled"

// ProductKey is the cache key of a single product
func ProductKey(id uint) string { return fmt.Sprintf("product_%d", id) }

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, c cache.Cache, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:     db,
		cache:  c,
		config: cfg,
		log:    log,
	}
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ImageURL    string `json:"image_url"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	ProductCode string `json:"product_code" binding:"max=50"`
	Stock       int    `json:"stock" binding:"gte=0"`
	IsHome      bool   `json:"is_home"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	BrandID     *uint  `json:"brand_id"`
	OrderNo     int    `json:"order_no"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	ImageURL    *string `json:"image_url"`
	Price       *int64  `json:"price"`
	ProductCode *string `json:"product_code"`
	Stock       *int    `json:"stock"`
	IsActive    *bool   `json:"is_active"`
	IsHome      *bool   `json:"is_home"`
	CategoryID  *uint   `json:"category_id"`
	BrandID     *uint   `json:"brand_id"`
	OrderNo     *int    `json:"order_no"`
}

// ProductStatistics summarises the catalog for the admin dashboard
type ProductStatistics struct {
	TotalProducts      int64            `json:"total_products"`
	ActiveProducts     int64            `json:"active_products"`
	InactiveProducts   int64            `json:"inactive_products"`
	OutOfStockProducts int64            `json:"out_of_stock_products"`
	LowStockProducts   int64            `json:"low_stock_products"`
	FeaturedProducts   int64            `json:"featured_products"`
	AveragePrice       int64            `json:"average_price"`
	HighestPrice       int64            `json:"highest_price"`
	LowestPrice        int64            `json:"lowest_price"`
	TotalStockValue    int64            `json:"total_stock_value"`
	TotalCategories    int64            `json:"total_categories"`
	TotalBrands        int64            `json:"total_brands"`
	ProductsByCategory map[string]int64 `json:"products_by_category"`
	ProductsByBrand    map[string]int64 `json:"products_by_brand"`
}

func (s *Service) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Scopes(ActiveProducts).
		Preload("Category").
		Preload("Brand")
}

// GetAllProducts returns every active product in display order
func (s *Service) GetAllProducts(ctx context.Context) ([]Product, error) {
	return cache.GetOrSet(ctx, s.cache, keyAllProducts, ttlAllProducts, func() ([]Product, error) {
		var products []Product
		if err := s.withRelations(ctx).Order("products.order_no ASC, products.id ASC").Find(&products).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve products: %w", err)
		}
		return products, nil
	})
}

// GetProduct returns one active product
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	p, err := cache.GetOrSet(ctx, s.cache, ProductKey(id), ttlProduct, func() (Product, error) {
		var p Product
		err := s.withRelations(ctx).Where("products.id = ?", id).First(&p).Error
		return p, apperr.FromGorm(err, "product")
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProductByID reads price and stock straight from the store. Used by
// the cart and order paths, which must never see a cached stock level.
func (s *Service) FindProductByID(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).Scopes(ActiveProducts).First(&p, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "product")
	}
	return &p, nil
}

// GetProductsByCategory returns active products in a category
func (s *Service) GetProductsByCategory(ctx context.Context, categoryID uint) ([]Product, error) {
	key := fmt.Sprintf("products_category_%d", categoryID)
	return cache.GetOrSet(ctx, s.cache, key, ttlByCategory, func() ([]Product, error) {
		var products []Product
		err := s.withRelations(ctx).
			Where("products.category_id = ?", categoryID).
			Order("products.order_no ASC, products.id ASC").
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve category products: %w", err)
		}
		return products, nil
	})
}

// GetProductsByBrand returns active products of a brand
func (s *Service) GetProductsByBrand(ctx context.Context, brandID uint) ([]Product, error) {
	key := fmt.Sprintf("products_brand_%d", brandID)
	return cache.GetOrSet(ctx, s.cache, key, ttlByBrand, func() ([]Product, error) {
		var products []Product
		err := s.withRelations(ctx).
			Where("products.brand_id = ?", brandID).
			Order("products.order_no ASC, products.id ASC").
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve brand products: %w", err)
		}
		return products, nil
	})
}

// GetFeaturedProducts returns the products flagged for the home page
func (s *Service) GetFeaturedProducts(ctx context.Context) ([]Product, error) {
	return cache.GetOrSet(ctx, s.cache, keyFeaturedProducts, ttlFeatured, func() ([]Product, error) {
		var products []Product
		err := s.withRelations(ctx).
			Where("products.is_home = ?", true).
			Order("products.order_no ASC, products.id ASC").
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve featured products: %w", err)
		}
		return products, nil
	})
}

// GetTopSellingProducts ranks active products by units sold on
// non-cancelled orders, then by display order.
func (s *Service) GetTopSellingProducts(ctx context.Context, count int) ([]Product, error) {
	count = clampCount(count, 10)
	key := fmt.Sprintf("top_selling_products_%d", count)
	return cache.GetOrSet(ctx, s.cache, key, ttlTopSelling, func() ([]Product, error) {
		sales := s.db.Table("order_items").
			Select("order_items.product_id AS product_id, SUM(order_items.quantity) AS sold").
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.status <> ?", cancelledOrderStatus).
			Group("order_items.product_id")

		var products []Product
		err := s.withRelations(ctx).
			Joins("LEFT JOIN (?) AS sales ON sales.product_id = products.id", sales).
			Order("COALESCE(sales.sold, 0) DESC").
			Order("products.order_no DESC").
			Order("products.id ASC").
			Limit(count).
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve top selling products: %w", err)
		}
		return products, nil
	})
}

// GetNewestProducts returns the most recently created active products
func (s *Service) GetNewestProducts(ctx context.Context, count int) ([]Product, error) {
	count = clampCount(count, 10)
	key := fmt.Sprintf("newest_products_%d", count)
	return cache.GetOrSet(ctx, s.cache, key, ttlNewest, func() ([]Product, error) {
		var products []Product
		err := s.withRelations(ctx).
			Order("products.created_at DESC, products.id DESC").
			Limit(count).
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve newest products: %w", err)
		}
		return products, nil
	})
}

// GetRelatedProducts returns other active products from the same category
func (s *Service) GetRelatedProducts(ctx context.Context, productID uint, count int) ([]Product, error) {
	count = clampCount(count, 4)
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("related_products_%d_%d", productID, count)
	return cache.GetOrSet(ctx, s.cache, key, ttlRelated, func() ([]Product, error) {
		var products []Product
		err := s.withRelations(ctx).
			Where("products.category_id = ? AND products.id <> ?", p.CategoryID, productID).
			Order("products.order_no DESC, products.id ASC").
			Limit(count).
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve related products: %w", err)
		}
		return products, nil
	})
}

// SearchProducts matches name, description and product code
func (s *Service) SearchProducts(ctx context.Context, term string) ([]Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []Product{}, nil
	}

	s.log.WithField("term", term).Debug("searching products")

	like := "%" + strings.ToLower(term) + "%"
	var products []Product
	err := s.withRelations(ctx).
		Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.product_code) LIKE ?", like, like, like).
		Order("products.name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// IsProductInStock reports whether an active product has stock left
func (s *Service) IsProductInStock(ctx context.Context, id uint) (bool, error) {
	p, err := s.FindProductByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.InStock(), nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Image:       req.Image,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		ProductCode: req.ProductCode,
		Stock:       req.Stock,
		IsActive:    true,
		IsHome:      req.IsHome,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
		OrderNo:     req.OrderNo,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.WithFields(logrus.Fields{"product_id": product.ID, "name": product.Name}).Info("product created")
	s.InvalidateProduct(ctx, product.ID)
	return &product, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	var product Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "product")
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperr.Validation("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.ProductCode != nil {
		updates["product_code"] = *req.ProductCode
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperr.Validation("stock must not be negative")
		}
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsHome != nil {
		updates["is_home"] = *req.IsHome
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.BrandID != nil {
		updates["brand_id"] = *req.BrandID
	}
	if req.OrderNo != nil {
		updates["order_no"] = *req.OrderNo
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	s.InvalidateProduct(ctx, id)

	if err := s.db.WithContext(ctx).Preload("Category").Preload("Brand").First(&product, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "product")
	}
	return &product, nil
}

// DeleteProduct clears the active flag; rows stay for order history
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&Product{}).
		Scopes(ActiveProducts).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product")
	}

	s.InvalidateProduct(ctx, id)
	return nil
}

// InvalidateProduct drops every cached read that may contain the product
func (s *Service) InvalidateProduct(ctx context.Context, id uint) {
	keys := []string{ProductKey(id), keyAllProducts, keyFeaturedProducts, keyProductStatistics}
	patterns := []string{prefixProducts, "top_selling_products_", "newest_products_", "related_products_"}
	if err := cache.Invalidate(ctx, s.cache, keys, patterns...); err != nil {
		s.log.WithError(err).WithField("product_id", id).Warn("product cache invalidation failed")
	}
}

// GetProductStatistics aggregates catalog counts and stock value
func (s *Service) GetProductStatistics(ctx context.Context) (*ProductStatistics, error) {
	stats, err := cache.GetOrSet(ctx, s.cache, keyProductStatistics, ttlStatistics, func() (ProductStatistics, error) {
		return s.computeStatistics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) computeStatistics(ctx context.Context) (ProductStatistics, error) {
	db := s.db.WithContext(ctx)
	stats := ProductStatistics{
		ProductsByCategory: map[string]int64{},
		ProductsByBrand:    map[string]int64{},
	}

	var agg struct {
		Total      int64
		Active     int64
		OutOfStock int64
		LowStock   int64
		Featured   int64
		AvgPrice   float64
		MaxPrice   int64
		MinPrice   int64
		StockValue int64
	}
	err := db.Model(&Product{}).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active,
		COALESCE(SUM(CASE WHEN stock = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
		COALESCE(SUM(CASE WHEN stock > 0 AND stock <= ? THEN 1 ELSE 0 END), 0) AS low_stock,
		COALESCE(SUM(CASE WHEN is_home THEN 1 ELSE 0 END), 0) AS featured,
		COALESCE(AVG(price), 0) AS avg_price,
		COALESCE(MAX(price), 0) AS max_price,
		COALESCE(MIN(price), 0) AS min_price,
		COALESCE(SUM(price * stock), 0) AS stock_value`, s.config.Store.LowStockThreshold).
		Scan(&agg).Error
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate products: %w", err)
	}

	stats.TotalProducts = agg.Total
	stats.ActiveProducts = agg.Active
	stats.InactiveProducts = agg.Total - agg.Active
	stats.OutOfStockProducts = agg.OutOfStock
	stats.LowStockProducts = agg.LowStock
	stats.FeaturedProducts = agg.Featured
	stats.AveragePrice = int64(agg.AvgPrice)
	stats.HighestPrice = agg.MaxPrice
	stats.LowestPrice = agg.MinPrice
	stats.TotalStockValue = agg.StockValue

	if err := db.Model(&Category{}).Scopes(ActiveCategories).Count(&stats.TotalCategories).Error; err != nil {
		return stats, fmt.Errorf("failed to count categories: %w", err)
	}
	if err := db.Model(&Brand{}).Scopes(ActiveBrands).Count(&stats.TotalBrands).Error; err != nil {
		return stats, fmt.Errorf("failed to count brands: %w", err)
	}

	type group struct {
		Name  string
		Count int64
	}

	var byCategory []group
	err = db.Model(&Product{}).
		Select("categories.name AS name, COUNT(products.id) AS count").
		Joins("JOIN categories ON categories.id = products.category_id").
		Scopes(ActiveProducts).
		Group("categories.name").
		Scan(&byCategory).Error
	if err != nil {
		return stats, fmt.Errorf("failed to group products by category: %w", err)
	}
	for _, g := range byCategory {
		stats.ProductsByCategory[g.Name] = g.Count
	}

	var byBrand []group
	err = db.Model(&Product{}).
		Select("brands.name AS name, COUNT(products.id) AS count").
		Joins("JOIN brands ON brands.id = products.brand_id").
		Scopes(ActiveProducts).
		Group("brands.name").
		Scan(&byBrand).Error
	if err != nil {
		return stats, fmt.Errorf("failed to group products by brand: %w", err)
	}
	for _, g := range byBrand {
		stats.ProductsByBrand[g.Name] = g.Count
	}

	return stats, nil
}

func (s *Service) ensureCategory(ctx context.Context, categoryID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Category{}).Scopes(ActiveCategories).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return apperr.Validation("category %d does not exist", categoryID)
	}
	return nil
}

func clampCount(count, fallback int) int {
	if count <= 0 {
		return fallback
	}
	if count > 100 {
		return 100
	}
	return count
}

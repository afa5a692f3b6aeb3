// internal/domain/product/category_service.go
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eticaret/storefront/internal/infrastructure/cache"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	keyCategories        = "categories"
	keyTopMenuCategories = "categories_top_menu"
	keyBrands            = "brands"
	keySliders           = "sliders"

	ttlTaxonomy = 60 * time.Minute
)

// CategoryService handles categories, brands and home page sliders
type CategoryService struct {
	db    *gorm.DB
	cache cache.Cache
	log   *logrus.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, c cache.Cache, log *logrus.Logger) *CategoryService {
	return &CategoryService{
		db:    db,
		cache: c,
		log:   log,
	}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
	IsTopMenu   bool   `json:"is_top_menu"`
	OrderNo     int    `json:"order_no"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *uint   `json:"parent_id"`
	IsTopMenu   *bool   `json:"is_top_menu"`
	IsActive    *bool   `json:"is_active"`
	OrderNo     *int    `json:"order_no"`
}

// BrandRequest is used for both brand creation and update
type BrandRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"is_active"`
	OrderNo     *int    `json:"order_no"`
}

// SliderRequest is used for both slider creation and update
type SliderRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Link        *string `json:"link"`
	IsActive    *bool   `json:"is_active"`
	OrderNo     *int    `json:"order_no"`
}

// GetCategories returns active categories in display order
func (s *CategoryService) GetCategories(ctx context.Context) ([]Category, error) {
	return cache.GetOrSet(ctx, s.cache, keyCategories, ttlTaxonomy, func() ([]Category, error) {
		var categories []Category
		err := s.db.WithContext(ctx).
			Scopes(ActiveCategories).
			Order("order_no ASC, name ASC").
			Find(&categories).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve categories: %w", err)
		}
		return categories, nil
	})
}

// GetTopMenuCategories returns active categories shown in the navigation bar
func (s *CategoryService) GetTopMenuCategories(ctx context.Context) ([]Category, error) {
	return cache.GetOrSet(ctx, s.cache, keyTopMenuCategories, ttlTaxonomy, func() ([]Category, error) {
		var categories []Category
		err := s.db.WithContext(ctx).
			Scopes(ActiveCategories).
			Where("is_top_menu = ?", true).
			Order("order_no ASC, name ASC").
			Find(&categories).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve top menu categories: %w", err)
		}
		return categories, nil
	})
}

// GetCategory returns one active category
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	err := s.db.WithContext(ctx).Scopes(ActiveCategories).Preload("Parent").First(&category, id).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "category")
	}
	return &category, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}

	if req.ParentID != nil {
		if _, err := s.GetCategory(ctx, *req.ParentID); err != nil {
			if apperr.IsNotFound(err) {
				return nil, apperr.Validation("parent category %d does not exist", *req.ParentID)
			}
			return nil, err
		}
	}

	category := Category{
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsTopMenu:   req.IsTopMenu,
		IsActive:    true,
		OrderNo:     req.OrderNo,
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *CategoryUpdateRequest) (*Category, error) {
	var category Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "category")
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, apperr.Validation("category cannot be its own parent")
		}
		if s.isCircularReference(ctx, id, *req.ParentID) {
			return nil, apperr.Validation("circular category reference")
		}
		updates["parent_id"] = *req.ParentID
	}
	if req.IsTopMenu != nil {
		updates["is_top_menu"] = *req.IsTopMenu
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.OrderNo != nil {
		updates["order_no"] = *req.OrderNo
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	s.invalidateCategories(ctx)

	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "category")
	}
	return &category, nil
}

// DeleteCategory deactivates a category. Categories with active products
// cannot be removed.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	var productCount int64
	err := s.db.WithContext(ctx).Model(&Product{}).
		Scopes(ActiveProducts).
		Where("category_id = ?", id).
		Count(&productCount).Error
	if err != nil {
		return fmt.Errorf("failed to check category products: %w", err)
	}
	if productCount > 0 {
		return apperr.Validation("category has %d active products", productCount)
	}

	result := s.db.WithContext(ctx).Model(&Category{}).
		Scopes(ActiveCategories).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("category")
	}

	s.invalidateCategories(ctx)
	return nil
}

// isCircularReference walks up from parentID looking for categoryID
func (s *CategoryService) isCircularReference(ctx context.Context, categoryID, parentID uint) bool {
	current := &parentID
	for depth := 0; current != nil && depth < 32; depth++ {
		if *current == categoryID {
			return true
		}
		var parent Category
		if err := s.db.WithContext(ctx).Select("id", "parent_id").First(&parent, *current).Error; err != nil {
			return false
		}
		current = parent.ParentID
	}
	return false
}

func (s *CategoryService) invalidateCategories(ctx context.Context) {
	if err := cache.Invalidate(ctx, s.cache, []string{keyCategories, keyTopMenuCategories}, "products_category_"); err != nil {
		s.log.WithError(err).Warn("category cache invalidation failed")
	}
}

// GetBrands returns active brands in display order
func (s *CategoryService) GetBrands(ctx context.Context) ([]Brand, error) {
	return cache.GetOrSet(ctx, s.cache, keyBrands, ttlTaxonomy, func() ([]Brand, error) {
		var brands []Brand
		err := s.db.WithContext(ctx).
			Scopes(ActiveBrands).
			Order("order_no ASC, name ASC").
			Find(&brands).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve brands: %w", err)
		}
		return brands, nil
	})
}

// GetBrand returns one active brand
func (s *CategoryService) GetBrand(ctx context.Context, id uint) (*Brand, error) {
	var brand Brand
	if err := s.db.WithContext(ctx).Scopes(ActiveBrands).First(&brand, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "brand")
	}
	return &brand, nil
}

// CreateBrand creates a new brand
func (s *CategoryService) CreateBrand(ctx context.Context, req *BrandRequest) (*Brand, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Validation("brand name is required")
	}

	brand := Brand{Name: strings.TrimSpace(*req.Name), IsActive: true}
	if req.Description != nil {
		brand.Description = *req.Description
	}
	if req.Logo != nil {
		brand.Logo = *req.Logo
	}
	if req.Image != nil {
		brand.Image = *req.Image
	}
	if req.OrderNo != nil {
		brand.OrderNo = *req.OrderNo
	}

	if err := s.db.WithContext(ctx).Create(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	s.invalidateBrands(ctx)
	return &brand, nil
}

// UpdateBrand updates an existing brand
func (s *CategoryService) UpdateBrand(ctx context.Context, id uint, req *BrandRequest) (*Brand, error) {
	var brand Brand
	if err := s.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "brand")
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Logo != nil {
		updates["logo"] = *req.Logo
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.OrderNo != nil {
		updates["order_no"] = *req.OrderNo
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&brand).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update brand: %w", err)
		}
	}

	s.invalidateBrands(ctx)

	if err := s.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "brand")
	}
	return &brand, nil
}

// DeleteBrand deactivates a brand
func (s *CategoryService) DeleteBrand(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&Brand{}).
		Scopes(ActiveBrands).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete brand: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("brand")
	}

	s.invalidateBrands(ctx)
	return nil
}

func (s *CategoryService) invalidateBrands(ctx context.Context) {
	if err := cache.Invalidate(ctx, s.cache, []string{keyBrands}, "products_brand_"); err != nil {
		s.log.WithError(err).Warn("brand cache invalidation failed")
	}
}

// GetSliders returns active home page sliders
func (s *CategoryService) GetSliders(ctx context.Context) ([]Slider, error) {
	return cache.GetOrSet(ctx, s.cache, keySliders, ttlTaxonomy, func() ([]Slider, error) {
		var sliders []Slider
		err := s.db.WithContext(ctx).
			Scopes(ActiveSliders).
			Order("order_no ASC, id ASC").
			Find(&sliders).Error
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve sliders: %w", err)
		}
		return sliders, nil
	})
}

// CreateSlider creates a new slider
func (s *CategoryService) CreateSlider(ctx context.Context, req *SliderRequest) (*Slider, error) {
	if req.Image == nil || strings.TrimSpace(*req.Image) == "" {
		return nil, apperr.Validation("slider image is required")
	}

	slider := Slider{Image: *req.Image, IsActive: true}
	if req.Title != nil {
		slider.Title = *req.Title
	}
	if req.Description != nil {
		slider.Description = *req.Description
	}
	if req.Link != nil {
		slider.Link = *req.Link
	}
	if req.OrderNo != nil {
		slider.OrderNo = *req.OrderNo
	}

	if err := s.db.WithContext(ctx).Create(&slider).Error; err != nil {
		return nil, fmt.Errorf("failed to create slider: %w", err)
	}

	s.invalidateSliders(ctx)
	return &slider, nil
}

// UpdateSlider updates an existing slider
func (s *CategoryService) UpdateSlider(ctx context.Context, id uint, req *SliderRequest) (*Slider, error) {
	var slider Slider
	if err := s.db.WithContext(ctx).First(&slider, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "slider")
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.OrderNo != nil {
		updates["order_no"] = *req.OrderNo
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&slider).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update slider: %w", err)
		}
	}

	s.invalidateSliders(ctx)

	if err := s.db.WithContext(ctx).First(&slider, id).Error; err != nil {
		return nil, apperr.FromGorm(err, "slider")
	}
	return &slider, nil
}

// DeleteSlider deactivates a slider
func (s *CategoryService) DeleteSlider(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&Slider{}).
		Scopes(ActiveSliders).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete slider: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("slider")
	}

	s.invalidateSliders(ctx)
	return nil
}

func (s *CategoryService) invalidateSliders(ctx context.Context) {
	if err := s.cache.Delete(ctx, keySliders); err != nil {
		s.log.WithError(err).Warn("slider cache invalidation failed")
	}
}

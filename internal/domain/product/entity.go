// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable catalog item
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:200" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:500" json:"image"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Price       int64     `gorm:"not null" json:"price"` // minor units
	ProductCode string    `gorm:"size:50;index" json:"product_code"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	IsHome      bool      `gorm:"default:false" json:"is_home"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	BrandID     *uint     `gorm:"index" json:"brand_id"`
	OrderNo     int       `gorm:"default:0" json:"order_no"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	Brand    *Brand    `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
}

// Category represents a product category, optionally nested
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	IsTopMenu   bool      `gorm:"default:false" json:"is_top_menu"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	OrderNo     int       `gorm:"default:0" json:"order_no"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Parent *Category `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

// Brand represents a product brand
type Brand struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Logo        string    `gorm:"size:500" json:"logo"`
	Image       string    `gorm:"size:500" json:"image"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	OrderNo     int       `gorm:"default:0" json:"order_no"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Slider is a home page banner
type Slider struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	Image       string    `gorm:"size:500" json:"image"`
	Link        string    `gorm:"size:500" json:"link"`
	OrderNo     int       `gorm:"default:0" json:"order_no"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }
func (Brand) TableName() string    { return "brands" }
func (Slider) TableName() string   { return "sliders" }

// Active scopes. These are the only places the active predicate is written.

func ActiveProducts(db *gorm.DB) *gorm.DB {
	return db.Where("products.is_active = ?", true)
}

func ActiveCategories(db *gorm.DB) *gorm.DB {
	return db.Where("categories.is_active = ?", true)
}

func ActiveBrands(db *gorm.DB) *gorm.DB {
	return db.Where("brands.is_active = ?", true)
}

func ActiveSliders(db *gorm.DB) *gorm.DB {
	return db.Where("sliders.is_active = ?", true)
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// CanSupply reports whether quantity units can be served from stock
func (p *Product) CanSupply(quantity int) bool {
	return p.Stock >= quantity
}

// DisplayImage prefers the external URL over the uploaded file
func (p *Product) DisplayImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.Image
}

// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/eticaret/storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Cart is a shopping cart keyed by the anonymous session token. It is
// attached to a user once they log in.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uint      `gorm:"index" json:"user_id"`
	SessionID string     `gorm:"not null;size:64;index" json:"session_id"`
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}

// CartItem is one product line of a cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // unit price captured when the line was added
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cart    *Cart            `gorm:"foreignKey:CartID" json:"-"`
	Product *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

func ActiveCarts(db *gorm.DB) *gorm.DB {
	return db.Where("carts.is_active = ?", true)
}

func ActiveItems(db *gorm.DB) *gorm.DB {
	return db.Where("cart_items.is_active = ?", true)
}

// TotalPrice is the line total
func (i *CartItem) TotalPrice() int64 {
	return i.Price * int64(i.Quantity)
}

// TotalItems counts active lines
func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		if item.IsActive {
			n++
		}
	}
	return n
}

// TotalPrice sums active line totals
func (c *Cart) TotalPrice() int64 {
	var total int64
	for i := range c.Items {
		if c.Items[i].IsActive {
			total += c.Items[i].TotalPrice()
		}
	}
	return total
}

// ItemView is a cart line with the product details the storefront shows
type ItemView struct {
	ID           uint   `json:"id"`
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image"`
	ProductCode  string `json:"product_code"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`
	TotalPrice   int64  `json:"total_price"`
	Stock        int    `json:"stock"`
	IsAvailable  bool   `json:"is_available"`
}

// View is the read-only projection of a cart
type View struct {
	ID         uint       `json:"id"`
	SessionID  string     `json:"session_id"`
	UserID     *uint      `json:"user_id,omitempty"`
	Items      []ItemView `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice int64      `json:"total_price"`
	IsEmpty    bool       `json:"is_empty"`
}

// Summary is the header badge view of a cart
type Summary struct {
	TotalItems int   `json:"total_items"`
	TotalPrice int64 `json:"total_price"`
	IsEmpty    bool  `json:"is_empty"`
}

func newView(sessionID string, items []ItemView) *View {
	v := &View{SessionID: sessionID, Items: items}
	for _, item := range items {
		v.TotalPrice += item.TotalPrice
	}
	v.TotalItems = len(items)
	v.IsEmpty = len(items) == 0
	return v
}

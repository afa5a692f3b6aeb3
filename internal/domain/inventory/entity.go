// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementOrderReserve MovementType = "order_reserve" // stock taken by a new order
	MovementOrderRelease MovementType = "order_release" // stock returned by a cancelled order
	MovementAdjustment   MovementType = "adjustment"    // manual correction by an admin
	MovementSale         MovementType = "sale"          // direct decrement outside the order flow
)

// StockMovement is one entry of the product stock ledger. Quantity is
// signed: negative for decrements.
type StockMovement struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	ProductID  uint         `gorm:"not null;index" json:"product_id"`
	Type       MovementType `gorm:"not null;size:20;index" json:"type"`
	Quantity   int          `gorm:"not null" json:"quantity"`
	StockAfter int          `gorm:"not null" json:"stock_after"`
	Reference  string       `gorm:"size:50;index" json:"reference"` // order number for order movements
	Note       string       `gorm:"size:500" json:"note"`
	CreatedBy  *uint        `gorm:"index" json:"created_by,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// TableName overrides the table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

// IsDecrement reports whether the movement took stock away
func (m *StockMovement) IsDecrement() bool {
	return m.Quantity < 0
}

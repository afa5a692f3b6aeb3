// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/eticaret/storefront/internal/domain/address"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Beklemede",
	OrderStatusConfirmed: "Onaylandı",
	OrderStatusPreparing: "Hazırlanıyor",
	OrderStatusShipped:   "Kargoya Verildi",
	OrderStatusDelivered: "Teslim Edildi",
	OrderStatusCancelled: "İptal Edildi",
	OrderStatusReturned:  "İade Edildi",
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the storefront display text
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusReturned
}

// PaymentMethod is how the customer intends to pay
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentDigitalWallet  PaymentMethod = "digital_wallet"
)

// AllPaymentMethods lists the selectable payment methods
var AllPaymentMethods = []PaymentMethod{
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentCashOnDelivery,
	PaymentBankTransfer,
	PaymentDigitalWallet,
}

var paymentLabels = map[PaymentMethod]string{
	PaymentCreditCard:     "Kredi Kartı",
	PaymentDebitCard:      "Banka Kartı",
	PaymentCashOnDelivery: "Kapıda Ödeme",
	PaymentBankTransfer:   "Havale/EFT",
	PaymentDigitalWallet:  "Dijital Cüzdan",
}

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	_, ok := paymentLabels[m]
	return ok
}

// Label is the storefront display text
func (m PaymentMethod) Label() string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return string(m)
}

// Order represents the order entity
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:20" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	AddressID     uint          `gorm:"not null;index" json:"address_id"`
	Status        OrderStatus   `gorm:"not null;size:20;default:'pending';index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"not null;size:30" json:"payment_method"`

	// Financial Information, minor units
	TotalAmount  int64 `gorm:"not null" json:"total_amount"` // items subtotal
	ShippingCost int64 `gorm:"not null;default:0" json:"shipping_cost"`

	Notes         string `gorm:"size:1000" json:"notes"`
	StockReserved bool   `gorm:"default:false" json:"stock_reserved"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Address       *address.Address     `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a product line frozen at order time
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"not null;size:200" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Price       int64     `gorm:"not null" json:"price"` // unit price, minor units
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:20" json:"from_status"`
	Status     OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment    string      `gorm:"size:1000" json:"comment"`
	ChangedBy  uint        `gorm:"index" json:"changed_by"` // user id who made the change
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

func ActiveOrders(db *gorm.DB) *gorm.DB {
	return db.Where("orders.is_active = ?", true)
}

// GrandTotal is what the customer pays
func (o *Order) GrandTotal() int64 {
	return o.TotalAmount + o.ShippingCost
}

// CanBeCancelled reports whether the customer may still cancel
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending
}

// IsCompleted checks if order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusDelivered
}

// StatusLabel is the display text of the current status
func (o *Order) StatusLabel() string {
	return o.Status.Label()
}

// ItemCount sums line quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// TotalPrice is the line total
func (i *OrderItem) TotalPrice() int64 {
	return i.Price * int64(i.Quantity)
}

// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/address"
	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/shipping"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderValidator runs the order pre-flight checks on a transaction
type OrderValidator interface {
	ValidateOrder(tx *gorm.DB, userID uint, req *order.CreateOrderRequest) error
}

// Service builds the checkout page model
type Service struct {
	db        *gorm.DB
	config    *config.Config
	log       *logrus.Logger
	carts     *cart.Service
	addresses *address.Service
	orders    OrderValidator
	shipping  shipping.Policy
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, carts *cart.Service, addresses *address.Service, orders OrderValidator) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		log:       log,
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		shipping:  shipping.FromConfig(cfg),
	}
}

// PaymentMethod is a selectable payment option
type PaymentMethod struct {
	ID   order.PaymentMethod `json:"id"`
	Name string              `json:"name"`
}

// CheckoutPricing represents pricing breakdown
type CheckoutPricing struct {
	Subtotal              int64 `json:"subtotal"`
	ShippingCost          int64 `json:"shipping_cost"`
	TotalAmount           int64 `json:"total_amount"`
	FreeShippingThreshold int64 `json:"free_shipping_threshold"`
	RemainingForFree      int64 `json:"remaining_for_free_shipping"`
}

// View is everything the checkout page shows
type View struct {
	Items             []cart.ItemView   `json:"items"`
	TotalItems        int               `json:"total_items"`
	Addresses         []address.Address `json:"addresses"`
	SelectedAddressID uint              `json:"selected_address_id,omitempty"`
	Pricing           CheckoutPricing   `json:"pricing"`
	PaymentMethods    []PaymentMethod   `json:"payment_methods"`
	Currency          string            `json:"currency"`
	IsEmpty           bool              `json:"is_empty"`
}

// CheckoutValidation represents checkout validation result
type CheckoutValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
	View    *View    `json:"summary,omitempty"`
}

// GetCheckoutView assembles the user's cart, addresses and totals
func (s *Service) GetCheckoutView(ctx context.Context, userID uint) (*View, error) {
	lines, err := s.carts.GetUserCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addresses.GetUserAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{
		Items:          make([]cart.ItemView, 0, len(lines)),
		Addresses:      addresses,
		PaymentMethods: paymentMethods(),
		Currency:       s.config.Store.Currency,
	}

	var subtotal int64
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		item := cart.ItemView{
			ID:           line.ID,
			ProductID:    line.ProductID,
			ProductName:  line.Product.Name,
			ProductImage: line.Product.DisplayImage(),
			ProductCode:  line.Product.ProductCode,
			Quantity:     line.Quantity,
			Price:        line.Price,
			TotalPrice:   line.TotalPrice(),
			Stock:        line.Product.Stock,
			IsAvailable:  line.Product.IsActive && line.Product.CanSupply(line.Quantity),
		}
		view.Items = append(view.Items, item)
		subtotal += item.TotalPrice
	}
	view.TotalItems = len(view.Items)
	view.IsEmpty = view.TotalItems == 0

	for _, a := range addresses {
		if a.IsDefault {
			view.SelectedAddressID = a.ID
			break
		}
	}

	view.Pricing = CheckoutPricing{
		Subtotal:              subtotal,
		FreeShippingThreshold: s.shipping.FreeThreshold,
		RemainingForFree:      s.shipping.RemainingForFree(subtotal),
	}
	if !view.IsEmpty {
		view.Pricing.ShippingCost = s.shipping.Cost(subtotal)
	}
	view.Pricing.TotalAmount = view.Pricing.Subtotal + view.Pricing.ShippingCost

	return view, nil
}

// ValidateCheckout runs the order checks without placing the order
func (s *Service) ValidateCheckout(ctx context.Context, userID uint, req *order.CreateOrderRequest) (*CheckoutValidation, error) {
	view, err := s.GetCheckoutView(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &CheckoutValidation{IsValid: true, View: view}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	if err := s.orders.ValidateOrder(tx, userID, req); err != nil {
		if !apperr.IsValidation(err) {
			return nil, err
		}
		result.IsValid = false
		result.Errors = append(result.Errors, err.Error())
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"reason":  err.Error(),
		}).Debug("checkout validation failed")
	}
	return result, nil
}

func paymentMethods() []PaymentMethod {
	methods := make([]PaymentMethod, len(order.AllPaymentMethods))
	for i, m := range order.AllPaymentMethods {
		methods[i] = PaymentMethod{ID: m, Name: m.Label()}
	}
	return methods
}

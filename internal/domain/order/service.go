// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/domain/shipping"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartStore reads and clears a user's cart inside the order transaction
type CartStore interface {
	GetUserCartItemsTx(tx *gorm.DB, userID uint) ([]cart.CartItem, error)
	ClearUserCartTx(tx *gorm.DB, userID uint) (bool, error)
}

// AddressChecker verifies the delivery address inside the order transaction
type AddressChecker interface {
	IsUsableAddress(tx *gorm.DB, addressID, userID uint) (bool, error)
}

// StockKeeper moves product stock inside the order transaction
type StockKeeper interface {
	Reserve(tx *gorm.DB, productID uint, quantity int, reference string) error
	Release(tx *gorm.DB, productID uint, quantity int, reference string) error
	InvalidateProducts(ctx context.Context, ids ...uint)
}

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	log       *logrus.Logger
	carts     CartStore
	addresses AddressChecker
	stock     StockKeeper
	shipping  shipping.Policy
	sequencer *Sequencer
	publisher EventPublisher
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, carts CartStore, addresses AddressChecker, stock StockKeeper) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		log:       log,
		carts:     carts,
		addresses: addresses,
		stock:     stock,
		shipping:  shipping.FromConfig(cfg),
		sequencer: NewSequencer(nil),
		publisher: noopPublisher{},
	}
}

// WithPublisher sets the receivers of order events
func (s *Service) WithPublisher(publishers ...EventPublisher) *Service {
	var set multiPublisher
	for _, p := range publishers {
		if p != nil {
			set = append(set, p)
		}
	}

	switch len(set) {
	case 0:
		s.publisher = noopPublisher{}
	case 1:
		s.publisher = set[0]
	default:
		s.publisher = set
	}
	return s
}

// WithClock replaces the clock used for order numbers
func (s *Service) WithClock(now func() time.Time) *Service {
	s.sequencer = NewSequencer(now)
	return s
}

// CreateOrderRequest represents the checkout form. Totals are always
// recomputed from the cart.
type CreateOrderRequest struct {
	SelectedAddressID uint          `json:"selectedAddressId" binding:"required"`
	PaymentMethod     PaymentMethod `json:"paymentMethod" binding:"required"`
	Notes             string        `json:"notes" binding:"max=1000"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" binding:"required"`
	Comment string      `json:"comment" binding:"max=1000"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int         `form:"page,default=1"`
	Limit     int         `form:"limit,default=20"`
	Status    OrderStatus `form:"status"`
	UserID    uint        `form:"user_id"`
	Search    string      `form:"search"`
	SortBy    string      `form:"sort_by,default=created_at"`
	SortOrder string      `form:"sort_order,default=desc"`
	DateFrom  string      `form:"date_from"`
	DateTo    string      `form:"date_to"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// OrderList is a user's order history with per-status counts
type OrderList struct {
	Orders          []Order `json:"orders"`
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	ConfirmedOrders int     `json:"confirmed_orders"`
	ShippedOrders   int     `json:"shipped_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
}

// ValidateOrder checks the address, the cart and stock on the caller's
// transaction.
func (s *Service) ValidateOrder(tx *gorm.DB, userID uint, req *CreateOrderRequest) error {
	_, err := s.validate(tx, userID, req)
	return err
}

func (s *Service) validate(tx *gorm.DB, userID uint, req *CreateOrderRequest) ([]cart.CartItem, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, apperr.Validation("invalid payment method %q", req.PaymentMethod)
	}

	usable, err := s.addresses.IsUsableAddress(tx, req.SelectedAddressID, userID)
	if err != nil {
		return nil, err
	}
	if !usable {
		return nil, apperr.Validation("selected address is not available")
	}

	items, err := s.carts.GetUserCartItemsTx(tx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.ErrEmptyCart
	}

	for _, item := range items {
		var p product.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "name", "stock", "is_active").
			First(&p, item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !p.IsActive) {
			return nil, apperr.Validation("product %d is no longer available", item.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if !p.CanSupply(item.Quantity) {
			return nil, apperr.InsufficientStock(p.Name, p.Stock, item.Quantity)
		}
	}

	return items, nil
}

// CreateOrder turns the user's cart into a pending order. The whole
// checkout runs in one transaction and is retried when another checkout
// took the same order number.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	attempts := s.config.Store.OrderNumberRetries
	if attempts < 1 {
		attempts = 1
	}

	var (
		order *Order
		err   error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		order, err = s.createOrder(ctx, userID, req)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"attempt": attempt,
		}).Warn("order number collision, retrying checkout")
	}
	if err != nil {
		return nil, err
	}

	if order.StockReserved {
		ids := make([]uint, len(order.Items))
		for i, item := range order.Items {
			ids[i] = item.ProductID
		}
		s.stock.InvalidateProducts(ctx, ids...)
	}

	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"grand_total":  order.GrandTotal(),
		"items":        len(order.Items),
	}).Info("order created")

	s.publisher.Publish(newEvent(EventOrderCreated, order, ""))
	return order, nil
}

func (s *Service) createOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	items, err := s.validate(tx, userID, req)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var subtotal int64
	for i := range items {
		subtotal += items[i].TotalPrice()
	}

	number, err := s.sequencer.Next(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order := Order{
		OrderNumber:   number,
		UserID:        userID,
		AddressID:     req.SelectedAddressID,
		Status:        OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   subtotal,
		ShippingCost:  s.shipping.Cost(subtotal),
		Notes:         strings.TrimSpace(req.Notes),
		StockReserved: s.config.Store.ReserveStockOnOrder,
		IsActive:      true,
	}

	if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]OrderItem, len(items))
	for i, item := range items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		order.Items[i] = OrderItem{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	if err := tx.Create(&order.Items).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if order.StockReserved {
		for _, item := range order.Items {
			if err := s.stock.Reserve(tx, item.ProductID, item.Quantity, number); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if _, err := s.carts.ClearUserCartTx(tx, userID); err != nil {
		tx.Rollback()
		return nil, err
	}

	history := OrderStatusHistory{
		OrderID:   order.ID,
		Status:    OrderStatusPending,
		Comment:   "Sipariş oluşturuldu",
		ChangedBy: userID,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create status history: %w", err)
	}
	order.StatusHistory = []OrderStatusHistory{history}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &order, nil
}

func (s *Service) withDetails(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Preload("Address").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.created_at ASC, order_status_history.id ASC")
		})
}

// GetOrder returns one of the user's orders
func (s *Service) GetOrder(ctx context.Context, orderID, userID uint) (*Order, error) {
	var order Order
	err := s.withDetails(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "order")
	}
	return &order, nil
}

// GetOrderByNumber returns one of the user's orders by its number
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string, userID uint) (*Order, error) {
	var order Order
	err := s.withDetails(ctx).
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&order).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "order")
	}
	return &order, nil
}

// GetUserOrders returns the user's active orders, newest first
func (s *Service) GetUserOrders(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Address").
		Scopes(ActiveOrders).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// GetUserOrderList returns the user's orders with per-status counts
func (s *Service) GetUserOrderList(ctx context.Context, userID uint) (*OrderList, error) {
	orders, err := s.GetUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: orders, TotalOrders: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case OrderStatusPending:
			list.PendingOrders++
		case OrderStatusConfirmed:
			list.ConfirmedOrders++
		case OrderStatusShipped:
			list.ShippedOrders++
		case OrderStatusDelivered:
			list.CompletedOrders++
		case OrderStatusCancelled:
			list.CancelledOrders++
		}
	}
	return list, nil
}

// CancelOrder cancels one of the user's orders. Only pending orders can be
// cancelled; any other status returns false and leaves the order alone.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID uint) (bool, error) {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var order Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return false, nil
	}
	if err != nil {
		tx.Rollback()
		return false, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !order.CanBeCancelled() {
		tx.Rollback()
		return false, nil
	}

	released, err := s.changeStatus(tx, &order, OrderStatusCancelled, userID, "Müşteri tarafından iptal edildi")
	if err != nil {
		tx.Rollback()
		if apperr.IsValidation(err) {
			return false, nil
		}
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.stock.InvalidateProducts(ctx, released...)
	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
	}).Info("order cancelled by customer")
	s.publisher.Publish(newEvent(EventOrderCancelled, &order, OrderStatusPending))
	return true, nil
}

// UpdateOrderStatus moves an order to a new status on behalf of an admin
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uint, status OrderStatus, changedBy uint, comment string) error {
	if !status.IsValid() {
		return apperr.Validation("invalid order status %q", status)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var order Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		tx.Rollback()
		return apperr.FromGorm(err, "order")
	}

	previous := order.Status
	if previous == status {
		tx.Rollback()
		return apperr.Validation("order is already %s", status)
	}
	if s.config.Store.EnforceTransitions && !CanTransition(previous, status) {
		tx.Rollback()
		return apperr.Validation("cannot move order from %s to %s", previous, status)
	}

	released, err := s.changeStatus(tx, &order, status, changedBy, comment)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}

	s.stock.InvalidateProducts(ctx, released...)
	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           status,
		"changed_by":   changedBy,
	}).Info("order status updated")

	kind := EventOrderStatusChanged
	if status == OrderStatusCancelled {
		kind = EventOrderCancelled
	}
	s.publisher.Publish(newEvent(kind, &order, previous))
	return nil
}

// changeStatus writes the new status, returns reserved stock for cancelled
// and returned orders, and records history. The update is conditional on
// the status read earlier so a concurrent change is never overwritten.
// Returns the ids of products whose stock was released.
func (s *Service) changeStatus(tx *gorm.DB, order *Order, status OrderStatus, changedBy uint, comment string) ([]uint, error) {
	previous := order.Status
	updates := map[string]interface{}{"status": status}

	var released []uint
	if order.StockReserved && (status == OrderStatusCancelled || status == OrderStatusReturned) {
		var items []OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to load order items: %w", err)
		}
		for _, item := range items {
			if err := s.stock.Release(tx, item.ProductID, item.Quantity, order.OrderNumber); err != nil {
				return nil, err
			}
			released = append(released, item.ProductID)
		}
		updates["stock_reserved"] = false
	}

	result := tx.Model(&Order{}).
		Where("id = ? AND status = ?", order.ID, previous).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Validation("order status changed concurrently")
	}

	history := OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: previous,
		Status:     status,
		Comment:    comment,
		ChangedBy:  changedBy,
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to create status history: %w", err)
	}

	order.Status = status
	if _, ok := updates["stock_reserved"]; ok {
		order.StockReserved = false
	}
	return released, nil
}

// GetAllOrders lists orders for the admin panel
func (s *Service) GetAllOrders(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query, err := s.filteredOrders(ctx, req)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err = query.
		Preload("Items").
		Preload("Address").
		Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// ExportOrders returns every order matching the filter, for spreadsheets
func (s *Service) ExportOrders(ctx context.Context, req *OrderListRequest) ([]Order, error) {
	query, err := s.filteredOrders(ctx, req)
	if err != nil {
		return nil, err
	}

	var orders []Order
	err = query.
		Preload("Items").
		Preload("Address").
		Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to export orders: %w", err)
	}
	return orders, nil
}

// GetOrderForAdmin returns any order with its details
func (s *Service) GetOrderForAdmin(ctx context.Context, orderID uint) (*Order, error) {
	var order Order
	if err := s.withDetails(ctx).First(&order, orderID).Error; err != nil {
		return nil, apperr.FromGorm(err, "order")
	}
	return &order, nil
}

func (s *Service) filteredOrders(ctx context.Context, req *OrderListRequest) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&Order{}).Scopes(ActiveOrders)

	if req.Status != "" {
		if !req.Status.IsValid() {
			return nil, apperr.Validation("invalid order status %q", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		query = query.Where("order_number LIKE ?", "%"+strings.ToUpper(search)+"%")
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, apperr.Validation("date_from must be YYYY-MM-DD")
		}
		query = query.Where("created_at >= ?", from)
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, apperr.Validation("date_to must be YYYY-MM-DD")
		}
		query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
	}
	return query, nil
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}

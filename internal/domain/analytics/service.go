// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CatalogReader supplies the product side of the dashboard
type CatalogReader interface {
	GetProductStatistics(ctx context.Context) (*product.ProductStatistics, error)
	GetTopSellingProducts(ctx context.Context, count int) ([]product.Product, error)
}

// StockReader supplies the low-stock list
type StockReader interface {
	GetLowStockProducts(ctx context.Context, threshold int) ([]product.Product, error)
}

// Service handles analytics business logic. Nothing is cached; every call
// reads the current tables.
type Service struct {
	db      *gorm.DB
	config  *config.Config
	log     *logrus.Logger
	catalog CatalogReader
	stock   StockReader
	now     func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger, catalog CatalogReader, stock StockReader) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		log:     log,
		catalog: catalog,
		stock:   stock,
		now:     time.Now,
	}
}

// OrderStatistics represents order counts and revenue. Revenue only counts
// delivered orders and includes shipping.
type OrderStatistics struct {
	TotalOrders    int64                       `json:"total_orders"`
	OrdersByStatus map[order.OrderStatus]int64 `json:"orders_by_status"`
	TotalRevenue   int64                       `json:"total_revenue"`
	AvgOrderValue  int64                       `json:"avg_order_value"`
	OrdersToday    int64                       `json:"orders_today"`
	RevenueToday   int64                       `json:"revenue_today"`
}

// Dashboard represents the admin landing page
type Dashboard struct {
	Orders             *OrderStatistics           `json:"orders"`
	Products           *product.ProductStatistics `json:"products"`
	TopSellingProducts []product.Product          `json:"top_selling_products"`
	RecentOrders       []order.Order              `json:"recent_orders"`
	LowStockProducts   []product.Product          `json:"low_stock_products"`
}

type statusCount struct {
	Status order.OrderStatus
	Count  int64
}

type countAndSum struct {
	Count int64
	Total int64
}

// GetOrderStatistics aggregates order counts and revenue
func (s *Service) GetOrderStatistics(ctx context.Context) (*OrderStatistics, error) {
	db := s.db.WithContext(ctx)
	stats := &OrderStatistics{OrdersByStatus: make(map[order.OrderStatus]int64, len(order.AllStatuses))}
	for _, status := range order.AllStatuses {
		stats.OrdersByStatus[status] = 0
	}

	var counts []statusCount
	err := db.Model(&order.Order{}).
		Scopes(order.ActiveOrders).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, c := range counts {
		stats.OrdersByStatus[c.Status] = c.Count
		stats.TotalOrders += c.Count
	}

	var delivered countAndSum
	err = db.Model(&order.Order{}).
		Scopes(order.ActiveOrders).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount + shipping_cost), 0) AS total").
		Where("status = ?", order.OrderStatusDelivered).
		Scan(&delivered).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TotalRevenue = delivered.Total
	if delivered.Count > 0 {
		stats.AvgOrderValue = delivered.Total / delivered.Count
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := db.Model(&order.Order{}).
		Scopes(order.ActiveOrders).
		Where("created_at >= ?", today).
		Count(&stats.OrdersToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}

	var todayDelivered countAndSum
	err = db.Model(&order.Order{}).
		Scopes(order.ActiveOrders).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount + shipping_cost), 0) AS total").
		Where("status = ? AND created_at >= ?", order.OrderStatusDelivered, today).
		Scan(&todayDelivered).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}
	stats.RevenueToday = todayDelivered.Total

	return stats, nil
}

// GetDashboard combines order and catalog statistics for the admin panel
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.GetOrderStatistics(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.GetProductStatistics(ctx)
	if err != nil {
		return nil, err
	}

	top, err := s.catalog.GetTopSellingProducts(ctx, 5)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.stock.GetLowStockProducts(ctx, 0)
	if err != nil {
		return nil, err
	}

	var recent []order.Order
	err = s.db.WithContext(ctx).
		Scopes(order.ActiveOrders).
		Order("created_at DESC, id DESC").
		Limit(10).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recent orders: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"total_orders": orders.TotalOrders,
		"low_stock":    len(lowStock),
	}).Debug("dashboard computed")

	return &Dashboard{
		Orders:             orders,
		Products:           products,
		TopSellingProducts: top,
		RecentOrders:       recent,
		LowStockProducts:   lowStock,
	}, nil
}

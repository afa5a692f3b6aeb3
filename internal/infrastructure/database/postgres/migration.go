// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eticaret/storefront/internal/domain/address"
	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/domain/favorite"
	"github.com/eticaret/storefront/internal/domain/inventory"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/domain/user"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles schema migrations and development seed data
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{db: db, log: log}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&product.Category{},
		&product.Brand{},
		&product.Product{},
		&product.Slider{},

		&address.Address{},

		&cart.Cart{},
		&cart.CartItem{},

		&inventory.StockMovement{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
		&order.OrderSequence{},

		&favorite.Favorite{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations(ctx context.Context) error {
	m.log.Info("running database auto-migrations")

	db := m.db.WithContext(ctx)
	for _, model := range Models() {
		m.log.Debugf("migrating model: %T", model)
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes the query paths rely on.
// Failures are logged and counted, never fatal.
func (m *Migration) CreateIndexes(ctx context.Context) (created, failed int) {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_home_active ON products(is_home, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_stock_active ON products(stock, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_categories_parent_active ON categories(parent_id, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_carts_session_active ON carts(session_id, is_active)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_session_active ON carts(session_id) WHERE is_active",
		"CREATE INDEX IF NOT EXISTS idx_carts_user_active ON carts(user_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",

		"CREATE INDEX IF NOT EXISTS idx_addresses_user_active ON addresses(user_id, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
	}

	db := m.db.WithContext(ctx)
	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("failed to create index")
			failed++
			continue
		}
		created++
	}

	m.log.WithFields(logrus.Fields{"created": created, "failed": failed}).Info("indexes ensured")
	return created, failed
}

// SeedInitialData inserts the categories and admin account a fresh
// development database needs. Existing rows are left alone.
func (m *Migration) SeedInitialData(ctx context.Context, adminEmail, adminPassword string) error {
	db := m.db.WithContext(ctx)

	if err := m.seedCategories(db); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(db, adminEmail, adminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

func (m *Migration) seedCategories(db *gorm.DB) error {
	categories := []product.Category{
		{Name: "Elektronik", Description: "Telefon, bilgisayar ve aksesuarlar", IsActive: true, IsTopMenu: true, OrderNo: 1},
		{Name: "Giyim", Description: "Kadın, erkek ve çocuk giyim", IsActive: true, IsTopMenu: true, OrderNo: 2},
		{Name: "Ev & Yaşam", Description: "Mobilya, dekorasyon ve mutfak", IsActive: true, IsTopMenu: true, OrderNo: 3},
		{Name: "Kitap", Description: "Kitap, dergi ve kırtasiye", IsActive: true, OrderNo: 4},
	}

	for _, category := range categories {
		var existing product.Category
		err := db.Where("name = ?", category.Name).First(&existing).Error
		switch {
		case err == nil:
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if err := db.Create(&category).Error; err != nil {
			return err
		}
		m.log.WithField("category", category.Name).Info("seeded category")
	}
	return nil
}

func (m *Migration) seedAdminUser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		m.log.Warn("admin credentials not configured, skipping admin seed")
		return nil
	}

	var existing user.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := user.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	m.log.WithField("user_id", admin.ID).Info("seeded admin user")
	return nil
}

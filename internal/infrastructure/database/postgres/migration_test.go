package postgres

import (
	"context"
	"testing"

	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/domain/user"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMigrationRunsOnFreshDatabase(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	m := NewMigration(db, testutil.NewLogger())

	require.NoError(t, m.RunAutoMigrations(ctx))
	for _, model := range Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}

	created, failed := m.CreateIndexes(ctx)
	assert.Zero(t, failed)
	assert.Positive(t, created)
}

func TestOneActiveCartPerSession(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	m := NewMigration(db, testutil.NewLogger())
	require.NoError(t, m.RunAutoMigrations(ctx))
	_, failed := m.CreateIndexes(ctx)
	require.Zero(t, failed)

	require.NoError(t, db.Create(&cart.Cart{SessionID: "sess-1", IsActive: true}).Error)
	err := db.Create(&cart.Cart{SessionID: "sess-1", IsActive: true}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// deactivated carts do not count
	require.NoError(t, db.Model(&cart.Cart{}).Where("session_id = ?", "sess-1").Update("is_active", false).Error)
	require.NoError(t, db.Create(&cart.Cart{SessionID: "sess-1", IsActive: true}).Error)
}

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	m := NewMigration(db, testutil.NewLogger())
	require.NoError(t, m.RunAutoMigrations(ctx))

	require.NoError(t, m.SeedInitialData(ctx, "admin@eticaret.local", "yonetici123"))
	require.NoError(t, m.SeedInitialData(ctx, "admin@eticaret.local", "yonetici123"))

	var categories, admins int64
	require.NoError(t, db.Model(&product.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&user.User{}).Where("is_admin = ?", true).Count(&admins).Error)
	assert.Equal(t, int64(4), categories)
	assert.Equal(t, int64(1), admins)
}

func TestSeedSkipsAdminWithoutCredentials(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	m := NewMigration(db, testutil.NewLogger())
	require.NoError(t, m.RunAutoMigrations(ctx))

	require.NoError(t, m.SeedInitialData(ctx, "", ""))

	var users int64
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingInvalidator struct{ ids []uint }

func (r *recordingInvalidator) InvalidateProduct(_ context.Context, id uint) {
	r.ids = append(r.ids, id)
}

func setup(t *testing.T) (*Service, *gorm.DB, *recordingInvalidator) {
	t.Helper()
	db := testutil.NewDB(t, &product.Category{}, &product.Product{}, &StockMovement{})
	require.NoError(t, db.Create(&product.Category{Name: "Oyuncak", IsActive: true}).Error)
	inv := &recordingInvalidator{}
	return NewService(db, testutil.NewConfig(t), testutil.NewLogger(), inv), db, inv
}

func seed(t *testing.T, db *gorm.DB, name string, stock int) product.Product {
	t.Helper()
	p := product.Product{Name: name, Price: 1000, Stock: stock, CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestReserveAndRelease(t *testing.T) {
	svc, db, _ := setup(t)
	p := seed(t, db, "Lego", 5)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, p.ID, 3, "ORD202403150001")
	}))
	assert.Equal(t, 2, stockOf(t, db, p.ID))

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, p.ID, 3, "ORD202403150002")
	})
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.Equal(t, 2, stockOf(t, db, p.ID))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(tx, p.ID, 3, "ORD202403150001")
	}))
	assert.Equal(t, 5, stockOf(t, db, p.ID))

	movements, err := svc.GetMovements(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, MovementOrderRelease, movements[0].Type)
	assert.Equal(t, 5, movements[0].StockAfter)
	assert.Equal(t, MovementOrderReserve, movements[1].Type)
	assert.Equal(t, -3, movements[1].Quantity)
	assert.True(t, movements[1].IsDecrement())
	assert.Equal(t, "ORD202403150001", movements[1].Reference)
}

func TestReserveUnknownProduct(t *testing.T) {
	svc, db, _ := setup(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, 404, 1, "ref")
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateProductStock(t *testing.T) {
	ctx := context.Background()
	svc, db, inv := setup(t)
	p := seed(t, db, "Puzzle", 4)

	assert.True(t, apperr.IsValidation(svc.UpdateProductStock(ctx, p.ID, 0)))
	assert.True(t, apperr.IsValidation(svc.UpdateProductStock(ctx, p.ID, -2)))

	require.NoError(t, svc.UpdateProductStock(ctx, p.ID, 3))
	assert.Equal(t, 1, stockOf(t, db, p.ID))
	assert.Equal(t, []uint{p.ID}, inv.ids)

	err := svc.UpdateProductStock(ctx, p.ID, 2)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))
	assert.Equal(t, 1, stockOf(t, db, p.ID))
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, db, inv := setup(t)
	p := seed(t, db, "Top", 2)

	m, err := svc.AdjustStock(ctx, p.ID, 10, "sayım farkı", 1)
	require.NoError(t, err)
	assert.Equal(t, 12, m.StockAfter)
	require.NotNil(t, m.CreatedBy)
	assert.Equal(t, uint(1), *m.CreatedBy)

	_, err = svc.AdjustStock(ctx, p.ID, -20, "", 1)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 12, stockOf(t, db, p.ID))

	_, err = svc.AdjustStock(ctx, p.ID, 0, "", 1)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.AdjustStock(ctx, 999, 5, "", 1)
	assert.True(t, apperr.IsNotFound(err))

	assert.Equal(t, []uint{p.ID}, inv.ids)
}

func TestGetLowStockProducts(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := setup(t)
	seed(t, db, "Bol", 100)
	seed(t, db, "Az", 3)
	seed(t, db, "Yok", 0)
	hidden := seed(t, db, "Gizli", 1)
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	low, err := svc.GetLowStockProducts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Yok", low[0].Name)
	assert.Equal(t, "Az", low[1].Name)

	low, err = svc.GetLowStockProducts(ctx, 200)
	require.NoError(t, err)
	assert.Len(t, low, 3)
}

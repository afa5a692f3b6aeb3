package favorite

import (
	"context"
	"testing"

	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *cart.Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &product.Category{}, &product.Product{}, &cart.Cart{}, &cart.CartItem{}, &Favorite{})
	require.NoError(t, db.Create(&product.Category{Name: "Kozmetik", IsActive: true}).Error)
	log := testutil.NewLogger()
	carts := cart.NewService(db, testutil.NewConfig(t), log)
	return NewService(db, log, carts), carts, db
}

func seedProduct(t *testing.T, db *gorm.DB, name string) product.Product {
	t.Helper()
	p := product.Product{Name: name, Price: 2500, Stock: 10, CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, db := setup(t)
	p := seedProduct(t, db, "Parfüm")

	first, err := svc.AddFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	second, err := svc.AddFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := svc.GetFavoriteCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ok, err := svc.IsFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsFavorite(ctx, 4, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddFavoriteUnknownProduct(t *testing.T) {
	svc, _, db := setup(t)
	p := seedProduct(t, db, "Krem")
	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)

	_, err := svc.AddFavorite(context.Background(), 3, p.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.AddFavorite(context.Background(), 3, 999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetFavoritesSkipsInactiveProducts(t *testing.T) {
	ctx := context.Background()
	svc, _, db := setup(t)
	a := seedProduct(t, db, "Ruj")
	b := seedProduct(t, db, "Maskara")

	_, err := svc.AddFavorite(ctx, 3, a.ID)
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, 3, b.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&product.Product{}).Where("id = ?", a.ID).Update("is_active", false).Error)

	favorites, err := svc.GetFavorites(ctx, 3)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, b.ID, favorites[0].ProductID)
	require.NotNil(t, favorites[0].Product)
	assert.Equal(t, "Maskara", favorites[0].Product.Name)

	count, err := svc.GetFavoriteCount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRemoveFavorite(t *testing.T) {
	ctx := context.Background()
	svc, _, db := setup(t)
	p := seedProduct(t, db, "Şampuan")

	_, err := svc.AddFavorite(ctx, 3, p.ID)
	require.NoError(t, err)

	ok, err := svc.RemoveFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.RemoveFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMoveToCart(t *testing.T) {
	ctx := context.Background()
	svc, carts, db := setup(t)
	p := seedProduct(t, db, "Sabun")

	err := svc.MoveToCart(ctx, 3, p.ID, 2, "sess-fav")
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.AddFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	require.NoError(t, svc.MoveToCart(ctx, 3, p.ID, 2, "sess-fav"))

	items, err := carts.GetUserCartItems(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	ok, err := svc.IsFavorite(ctx, 3, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

package product

import (
	"context"
	"testing"

	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// minimal order tables for the top-selling query
type testOrder struct {
	ID     uint
	Status string
}

func (testOrder) TableName() string { return "orders" }

type testOrderItem struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Quantity  int
}

func (testOrderItem) TableName() string { return "order_items" }

type fixture struct {
	db       *gorm.DB
	svc      *Service
	cats     *CategoryService
	category Category
	brand    Brand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t, &Category{}, &Brand{}, &Product{}, &Slider{}, &testOrder{}, &testOrderItem{})
	c := testutil.NewCache(t)
	log := testutil.NewLogger()
	cfg := testutil.NewConfig(t)

	f := &fixture{
		db:   db,
		svc:  NewService(db, c, cfg, log),
		cats: NewCategoryService(db, c, log),
	}
	f.category = Category{Name: "Mutfak", IsActive: true}
	require.NoError(t, db.Create(&f.category).Error)
	f.brand = Brand{Name: "Karaca", IsActive: true}
	require.NoError(t, db.Create(&f.brand).Error)
	return f
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int, mutate ...func(*Product)) Product {
	t.Helper()
	p := Product{Name: name, Price: price, Stock: stock, CategoryID: f.category.ID, IsActive: true}
	for _, m := range mutate {
		m(&p)
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) deactivate(t *testing.T, p Product) {
	t.Helper()
	require.NoError(t, f.db.Model(&Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)
}

func names(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestGetAllProductsSkipsInactiveAndCaches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.product(t, "Tencere", 120000, 5, func(p *Product) { p.OrderNo = 2 })
	f.product(t, "Tava", 45000, 3, func(p *Product) { p.OrderNo = 1 })
	hidden := f.product(t, "Eski Çaydanlık", 9000, 1)
	f.deactivate(t, hidden)

	products, err := f.svc.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tava", "Tencere"}, names(products))
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Mutfak", products[0].Category.Name)

	// cached read does not see rows written behind the service's back
	f.product(t, "Cezve", 15000, 2)
	products, err = f.svc.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.product(t, "Tencere", 120000, 5)
	got, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), got.Price)

	_, err = f.svc.GetProduct(ctx, 9999)
	assert.True(t, apperr.IsNotFound(err))

	f.deactivate(t, p)
	_, err = f.svc.FindProductByID(ctx, p.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestProductsByCategoryAndBrand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := Category{Name: "Banyo", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)

	f.product(t, "Tencere", 120000, 5, func(p *Product) { p.BrandID = &f.brand.ID })
	f.product(t, "Havlu", 20000, 5, func(p *Product) { p.CategoryID = other.ID })

	byCat, err := f.svc.GetProductsByCategory(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Havlu"}, names(byCat))

	byBrand, err := f.svc.GetProductsByBrand(ctx, f.brand.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tencere"}, names(byBrand))
}

func TestFeaturedAndNewest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.product(t, "Tencere", 120000, 5, func(p *Product) { p.IsHome = true })
	f.product(t, "Tava", 45000, 3)
	f.product(t, "Cezve", 15000, 2)

	featured, err := f.svc.GetFeaturedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tencere"}, names(featured))

	newest, err := f.svc.GetNewestProducts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, newest, 2)
}

func TestGetTopSellingProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.product(t, "Tencere", 120000, 5)
	b := f.product(t, "Tava", 45000, 3)
	c := f.product(t, "Cezve", 15000, 2, func(p *Product) { p.OrderNo = 9 })

	delivered := testOrder{Status: "delivered"}
	cancelled := testOrder{Status: "cancelled"}
	require.NoError(t, f.db.Create(&delivered).Error)
	require.NoError(t, f.db.Create(&cancelled).Error)

	require.NoError(t, f.db.Create(&[]testOrderItem{
		{OrderID: delivered.ID, ProductID: b.ID, Quantity: 4},
		{OrderID: delivered.ID, ProductID: a.ID, Quantity: 1},
		{OrderID: cancelled.ID, ProductID: a.ID, Quantity: 50},
	}).Error)

	top, err := f.svc.GetTopSellingProducts(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{b.Name, a.Name, c.Name}, names(top))
}

func TestGetRelatedProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := Category{Name: "Banyo", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)

	base := f.product(t, "Tencere", 120000, 5)
	f.product(t, "Tava", 45000, 3)
	f.product(t, "Havlu", 20000, 5, func(p *Product) { p.CategoryID = other.ID })

	related, err := f.svc.GetRelatedProducts(ctx, base.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tava"}, names(related))
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.product(t, "Döküm Tencere", 120000, 5, func(p *Product) { p.ProductCode = "KRC-100" })
	f.product(t, "Tava", 45000, 3, func(p *Product) { p.Description = "yapışmaz tencere uyumlu kapak" })
	f.product(t, "Cezve", 15000, 2)

	found, err := f.svc.SearchProducts(ctx, "tencere")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Döküm Tencere", "Tava"}, names(found))

	found, err = f.svc.SearchProducts(ctx, "krc")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = f.svc.SearchProducts(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateUpdateDeleteInvalidateCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateProduct(ctx, &ProductCreateRequest{Name: "Orphan", Price: 100, CategoryID: 9999})
	assert.True(t, apperr.IsValidation(err))

	created, err := f.svc.CreateProduct(ctx, &ProductCreateRequest{Name: "Tencere", Price: 120000, Stock: 4, CategoryID: f.category.ID})
	require.NoError(t, err)

	all, err := f.svc.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	price := int64(99000)
	updated, err := f.svc.UpdateProduct(ctx, created.ID, &ProductUpdateRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, price, updated.Price)

	got, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, price, got.Price)

	negative := int64(-1)
	_, err = f.svc.UpdateProduct(ctx, created.ID, &ProductUpdateRequest{Price: &negative})
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, f.svc.DeleteProduct(ctx, created.ID))
	all, err = f.svc.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.True(t, apperr.IsNotFound(f.svc.DeleteProduct(ctx, created.ID)))

	var row Product
	require.NoError(t, f.db.First(&row, created.ID).Error)
	assert.False(t, row.IsActive)
}

func TestIsProductInStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inStock := f.product(t, "Tencere", 120000, 1)
	empty := f.product(t, "Tava", 45000, 0)

	ok, err := f.svc.IsProductInStock(ctx, inStock.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsProductInStock(ctx, empty.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetProductStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.product(t, "Tencere", 1000, 2, func(p *Product) { p.IsHome = true; p.BrandID = &f.brand.ID })
	f.product(t, "Tava", 3000, 0)
	f.product(t, "Cezve", 2000, 50)
	hidden := f.product(t, "Eski", 500, 1)
	f.deactivate(t, hidden)

	stats, err := f.svc.GetProductStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.InactiveProducts)
	assert.Equal(t, int64(1), stats.OutOfStockProducts)
	assert.Equal(t, int64(2), stats.LowStockProducts)
	assert.Equal(t, int64(1), stats.FeaturedProducts)
	assert.Equal(t, int64(3000), stats.HighestPrice)
	assert.Equal(t, int64(500), stats.LowestPrice)
	assert.Equal(t, int64(1000*2+2000*50+500*1), stats.TotalStockValue)
	assert.Equal(t, int64(1), stats.TotalCategories)
	assert.Equal(t, int64(1), stats.TotalBrands)
	assert.Equal(t, int64(3), stats.ProductsByCategory["Mutfak"])
	assert.Equal(t, int64(1), stats.ProductsByBrand["Karaca"])
}

func TestProductHelpers(t *testing.T) {
	p := Product{Stock: 3, Image: "/img/a.jpg"}
	assert.True(t, p.InStock())
	assert.True(t, p.CanSupply(3))
	assert.False(t, p.CanSupply(4))
	assert.Equal(t, "/img/a.jpg", p.DisplayImage())

	p.ImageURL = "https://cdn.example.com/a.jpg"
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.DisplayImage())
}

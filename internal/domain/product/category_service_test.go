package product

import (
	"context"
	"testing"

	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	top, err := f.cats.CreateCategory(ctx, &CategoryCreateRequest{Name: "Elektronik", IsTopMenu: true, OrderNo: 1})
	require.NoError(t, err)

	child, err := f.cats.CreateCategory(ctx, &CategoryCreateRequest{Name: "Telefon", ParentID: &top.ID})
	require.NoError(t, err)

	_, err = f.cats.CreateCategory(ctx, &CategoryCreateRequest{Name: "Yetim", ParentID: func() *uint { id := uint(999); return &id }()})
	assert.True(t, apperr.IsValidation(err))

	menu, err := f.cats.GetTopMenuCategories(ctx)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Elektronik", menu[0].Name)

	all, err := f.cats.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.cats.UpdateCategory(ctx, top.ID, &CategoryUpdateRequest{ParentID: &child.ID})
	assert.True(t, apperr.IsValidation(err), "parent loop must be rejected")

	renamed, err := f.cats.UpdateCategory(ctx, child.ID, &CategoryUpdateRequest{Name: strPtr("Akıllı Telefon")})
	require.NoError(t, err)
	assert.Equal(t, "Akıllı Telefon", renamed.Name)

	got, err := f.cats.GetCategory(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Parent)
	assert.Equal(t, "Elektronik", got.Parent.Name)

	require.NoError(t, f.cats.DeleteCategory(ctx, child.ID))
	_, err = f.cats.GetCategory(ctx, child.ID)
	assert.True(t, apperr.IsNotFound(err))

	all, err = f.cats.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.product(t, "Tencere", 120000, 5)

	err := f.cats.DeleteCategory(ctx, f.category.ID)
	assert.True(t, apperr.IsValidation(err))
}

func TestBrandLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cats.CreateBrand(ctx, &BrandRequest{})
	assert.True(t, apperr.IsValidation(err))

	b, err := f.cats.CreateBrand(ctx, &BrandRequest{Name: strPtr("Arçelik"), OrderNo: intPtr(0)})
	require.NoError(t, err)

	brands, err := f.cats.GetBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 2)

	updated, err := f.cats.UpdateBrand(ctx, b.ID, &BrandRequest{Logo: strPtr("/logo.png")})
	require.NoError(t, err)
	assert.Equal(t, "/logo.png", updated.Logo)

	require.NoError(t, f.cats.DeleteBrand(ctx, b.ID))
	_, err = f.cats.GetBrand(ctx, b.ID)
	assert.True(t, apperr.IsNotFound(err))

	brands, err = f.cats.GetBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 1)
}

func TestSliders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cats.CreateSlider(ctx, &SliderRequest{Title: strPtr("no image")})
	assert.True(t, apperr.IsValidation(err))

	second, err := f.cats.CreateSlider(ctx, &SliderRequest{Title: strPtr("İkinci"), Image: strPtr("/s2.jpg"), OrderNo: intPtr(2)})
	require.NoError(t, err)
	first, err := f.cats.CreateSlider(ctx, &SliderRequest{Title: strPtr("Birinci"), Image: strPtr("/s1.jpg"), OrderNo: intPtr(1)})
	require.NoError(t, err)

	sliders, err := f.cats.GetSliders(ctx)
	require.NoError(t, err)
	require.Len(t, sliders, 2)
	assert.Equal(t, first.ID, sliders[0].ID)

	require.NoError(t, f.cats.DeleteSlider(ctx, second.ID))
	sliders, err = f.cats.GetSliders(ctx)
	require.NoError(t, err)
	assert.Len(t, sliders, 1)

	assert.True(t, apperr.IsNotFound(f.cats.DeleteSlider(ctx, second.ID)))
}

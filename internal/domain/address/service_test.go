package address

import (
	"context"
	"testing"

	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &Address{})
	return NewService(db, testutil.NewLogger()), db
}

func homeRequest(title string) *AddressRequest {
	return &AddressRequest{
		Title:       title,
		FullName:    "Ayşe Yılmaz",
		Phone:       "0532 123 45 67",
		City:        "İstanbul",
		District:    "Kadıköy",
		FullAddress: "Moda Cad. No:1",
	}
}

func TestCreateAddressFirstBecomesDefault(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	home, err := svc.CreateAddress(ctx, 1, homeRequest("Ev"))
	require.NoError(t, err)
	assert.True(t, home.IsDefault)

	work, err := svc.CreateAddress(ctx, 1, homeRequest("İş"))
	require.NoError(t, err)
	assert.False(t, work.IsDefault)

	list, err := svc.GetUserAddresses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, home.ID, list[0].ID)
}

func TestCreateAddressValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	req := homeRequest("Ev")
	req.City = "  "
	_, err := svc.CreateAddress(ctx, 1, req)
	assert.True(t, apperr.IsValidation(err))

	req = homeRequest("Ev")
	req.Phone = "not-a-phone"
	_, err = svc.CreateAddress(ctx, 1, req)
	assert.True(t, apperr.IsValidation(err))
}

func TestAddressOwnership(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)

	addr, err := svc.CreateAddress(ctx, 1, homeRequest("Ev"))
	require.NoError(t, err)

	_, err = svc.GetAddress(ctx, addr.ID, 2)
	assert.True(t, apperr.IsNotFound(err))

	ok, err := svc.UpdateAddress(ctx, addr.ID, 2, homeRequest("Başkası"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.DeleteAddress(ctx, addr.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.SetDefaultAddress(ctx, addr.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	usable, err := svc.IsUsableAddress(db, addr.ID, 2)
	require.NoError(t, err)
	assert.False(t, usable)

	usable, err = svc.IsUsableAddress(db, addr.ID, 1)
	require.NoError(t, err)
	assert.True(t, usable)
}

func TestUpdateAddress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	addr, err := svc.CreateAddress(ctx, 1, homeRequest("Ev"))
	require.NoError(t, err)

	req := homeRequest("Yazlık")
	req.City = "İzmir"
	ok, err := svc.UpdateAddress(ctx, addr.ID, 1, req)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.GetAddress(ctx, addr.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Yazlık", got.Title)
	assert.Equal(t, "İzmir", got.City)
	assert.True(t, got.IsDefault)
}

func TestDeleteAddressIsSoft(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)

	addr, err := svc.CreateAddress(ctx, 1, homeRequest("Ev"))
	require.NoError(t, err)

	ok, err := svc.DeleteAddress(ctx, addr.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.DeleteAddress(ctx, addr.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "already inactive")

	var row Address
	require.NoError(t, db.First(&row, addr.ID).Error)
	assert.False(t, row.IsActive)

	list, err := svc.GetUserAddresses(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	usable, err := svc.IsUsableAddress(db, addr.ID, 1)
	require.NoError(t, err)
	assert.False(t, usable)
}

func TestSetDefaultAddress(t *testing.T) {
	ctx := context.Background()
	svc, db := newService(t)

	home, err := svc.CreateAddress(ctx, 1, homeRequest("Ev"))
	require.NoError(t, err)
	work, err := svc.CreateAddress(ctx, 1, homeRequest("İş"))
	require.NoError(t, err)

	ok, err := svc.SetDefaultAddress(ctx, work.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	def, err := svc.GetDefaultAddress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, work.ID, def.ID)

	var defaults int64
	require.NoError(t, db.Model(&Address{}).Where("user_id = ? AND is_default = ?", 1, true).Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)

	var old Address
	require.NoError(t, db.First(&old, home.ID).Error)
	assert.False(t, old.IsDefault)

	_, err = svc.GetDefaultAddress(ctx, 99)
	assert.True(t, apperr.IsNotFound(err))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, validPhone("+90 (532) 123-45-67"))
	assert.True(t, validPhone("05321234567"))
	assert.False(t, validPhone("12345"))
	assert.False(t, validPhone("0532+1234567"))
}

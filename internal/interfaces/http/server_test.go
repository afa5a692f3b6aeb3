package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/eticaret/storefront/internal/domain/user"
	"github.com/eticaret/storefront/internal/infrastructure/database/postgres"
	"github.com/eticaret/storefront/internal/interfaces/http/routes"
	"github.com/eticaret/storefront/internal/pkg/export"
	"github.com/eticaret/storefront/internal/pkg/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeInvoices struct{}

func (fakeInvoices) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	return bytes.NewBufferString("%PDF-1.4 " + o.OrderNumber), nil
}

func (fakeInvoices) RenderInvoiceHTML(o *order.Order) ([]byte, error) {
	return []byte("<html>" + o.OrderNumber + "</html>"), nil
}

type testClient struct {
	t       *testing.T
	handler http.Handler
	token   string
	cookies []*http.Cookie
}

func (tc *testClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	tc.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	tc.handler.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		tc.cookies = cookies
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type env struct {
	db      *gorm.DB
	deps    *routes.Dependencies
	handler http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t, postgres.Models()...)
	cfg := testutil.NewConfig(t)
	cfg.Security.BcryptCost = bcrypt.MinCost
	log := testutil.NewLogger()

	deps := routes.NewDependencies(cfg, log, db, testutil.NewCache(t), nil)
	deps.Invoices = fakeInvoices{}

	srv := NewServer(cfg, log, db, nil, deps)
	return &env{db: db, deps: deps, handler: srv.Handler()}
}

func (e *env) client(t *testing.T) *testClient {
	return &testClient{t: t, handler: e.handler}
}

func (e *env) seedProduct(t *testing.T, price int64, stock int) product.Product {
	t.Helper()
	category := product.Category{Name: "Elektronik", IsActive: true}
	require.NoError(t, e.db.Create(&category).Error)
	p := product.Product{Name: "Kulaklık", Price: price, Stock: stock, CategoryID: category.ID, IsActive: true}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *env) register(t *testing.T, tc *testClient, email string) uint {
	t.Helper()
	w := tc.do(http.MethodPost, "/auth/register", map[string]string{
		"email":            email,
		"password":         "guvenli123",
		"confirm_password": "guvenli123",
		"first_name":       "Zeynep",
		"last_name":        "Kaya",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	tc.token = data["access_token"].(string)
	return uint(data["user"].(map[string]interface{})["id"].(float64))
}

func (e *env) adminClient(t *testing.T) *testClient {
	t.Helper()
	admin := user.User{Email: "admin@example.com", Password: "x", IsActive: true, IsAdmin: true}
	require.NoError(t, e.db.Create(&admin).Error)
	token, err := e.deps.JWT.GenerateAccessToken(admin.ID, admin.Email, true)
	require.NoError(t, err)
	tc := e.client(t)
	tc.token = token
	return tc
}

func addAddress(t *testing.T, tc *testClient) uint {
	t.Helper()
	w := tc.do(http.MethodPost, "/addresses", map[string]string{
		"title":        "Ev",
		"full_name":    "Zeynep Kaya",
		"phone":        "0532 123 45 67",
		"city":         "İstanbul",
		"district":     "Kadıköy",
		"full_address": "Moda Cad. No:1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(t, w)["data"].(map[string]interface{})["id"].(float64))
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestCheckoutFlow(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, 20000, 5)

	tc := e.client(t)
	e.register(t, tc, "zeynep@example.com")
	addressID := addAddress(t, tc)

	w := tc.do(http.MethodPost, "/cart/add", map[string]interface{}{"productId": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = tc.do(http.MethodGet, "/cart/count", nil)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = tc.do(http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	pricing := decode(t, w)["pricing"].(map[string]interface{})
	assert.Equal(t, float64(40000), pricing["subtotal"])

	w = tc.do(http.MethodPost, "/checkout", map[string]interface{}{
		"selectedAddressId": addressID,
		"paymentMethod":     "cash_on_delivery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode(t, w)
	assert.Equal(t, true, placed["success"])
	assert.True(t, strings.HasPrefix(placed["orderNumber"].(string), "ORD"))
	orderID := uint(placed["orderId"].(float64))
	assert.Equal(t, fmt.Sprintf("/orders/%d", orderID), placed["redirect"])
	assert.Equal(t, 3, stockOf(t, e.db, p.ID))

	w = tc.do(http.MethodGet, "/cart/count", nil)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())

	w = tc.do(http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode(t, w)["status"])

	w = tc.do(http.MethodGet, fmt.Sprintf("/orders/%d/invoice", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	other := e.client(t)
	e.register(t, other, "baska@example.com")
	w = other.do(http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = other.do(http.MethodPost, fmt.Sprintf("/order/cancel/%d", orderID), nil)
	assert.Equal(t, false, decode(t, w)["success"])

	w = tc.do(http.MethodPost, fmt.Sprintf("/order/cancel/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, 5, stockOf(t, e.db, p.ID))

	w = tc.do(http.MethodPost, fmt.Sprintf("/order/cancel/%d", orderID), nil)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestCheckoutRerendersOnValidationError(t *testing.T) {
	e := newEnv(t)
	tc := e.client(t)
	e.register(t, tc, "bos@example.com")
	addressID := addAddress(t, tc)

	w := tc.do(http.MethodPost, "/checkout", map[string]interface{}{
		"selectedAddressId": addressID,
		"paymentMethod":     "credit_card",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
	assert.Contains(t, body, "checkout")

	w = tc.do(http.MethodPost, "/checkout", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "checkout")
}

func TestGuestCartFollowsLogin(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, 1500, 10)

	registered := e.client(t)
	e.register(t, registered, "ali@example.com")

	guest := e.client(t)
	w := guest.do(http.MethodPost, "/cart/add", map[string]interface{}{"productId": p.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotEmpty(t, guest.cookies)

	w = guest.do(http.MethodPost, "/cart/add", map[string]interface{}{"productId": p.ID, "quantity": 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = guest.do(http.MethodPost, "/auth/login", map[string]string{"email": "ali@example.com", "password": "guvenli123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	guest.token = decode(t, w)["data"].(map[string]interface{})["access_token"].(string)

	w = guest.do(http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total_items"])
}

func TestCartLineUpdates(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, 1000, 4)
	tc := e.client(t)

	w := tc.do(http.MethodPost, "/cart/add", map[string]interface{}{"productId": p.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = tc.do(http.MethodGet, "/cart", nil)
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 1)
	lineID := items[0].(map[string]interface{})["id"]

	w = tc.do(http.MethodPost, "/cart/update-quantity", map[string]interface{}{"cartItemId": lineID, "quantity": 3})
	assert.JSONEq(t, `{"success":true,"totalPrice":3000,"totalItems":1}`, w.Body.String())

	w = tc.do(http.MethodPost, "/cart/update-quantity", map[string]interface{}{"cartItemId": lineID, "quantity": 9})
	assert.Equal(t, false, decode(t, w)["success"])

	w = tc.do(http.MethodPost, "/cart/remove", map[string]interface{}{"cartItemId": lineID})
	assert.JSONEq(t, `{"success":true,"totalPrice":0,"totalItems":0,"isEmpty":true}`, w.Body.String())
}

func TestAdminOrderManagement(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(t, 60000, 5)

	tc := e.client(t)
	e.register(t, tc, "musteri@example.com")
	addressID := addAddress(t, tc)
	tc.do(http.MethodPost, "/cart/add", map[string]interface{}{"productId": p.ID, "quantity": 1})
	w := tc.do(http.MethodPost, "/checkout", map[string]interface{}{
		"selectedAddressId": addressID,
		"paymentMethod":     "bank_transfer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := uint(decode(t, w)["orderId"].(float64))

	path := fmt.Sprintf("/admin/orders/update-status/%d", orderID)
	w = tc.do(http.MethodPost, path, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := e.adminClient(t)
	w = admin.do(http.MethodPost, path, map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = admin.do(http.MethodPost, path, map[string]string{"status": "confirmed", "comment": "stok kontrol edildi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = admin.do(http.MethodGet, "/admin/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["orders"], 1)

	w = admin.do(http.MethodGet, "/admin/orders/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	w = admin.do(http.MethodGet, "/admin/statistics/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = admin.do(http.MethodGet, "/admin/orders/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = tc.do(http.MethodPost, fmt.Sprintf("/order/cancel/%d", orderID), nil)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)
	tc := e.client(t)

	for _, path := range []string{"/checkout", "/orders", "/addresses", "/favorites", "/admin/dashboard"} {
		w := tc.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	e := newEnv(t)

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = httptest.NewRecorder()
	e.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	e.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

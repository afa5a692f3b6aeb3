// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/eticaret/storefront/internal/domain/cart"
	"github.com/eticaret/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints. Guests are identified by the session
// cookie, logged-in users additionally by their id.
type CartHandler struct {
	cartService *cart.Service
	log         *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, log *logrus.Logger) *CartHandler {
	return &CartHandler{cartService: carts, log: log}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCartView(c.Request.Context(), middleware.GetSessionID(c), middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddToCart handles POST /cart/add
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	_, err := h.cartService.AddToCart(c.Request.Context(), req.ProductID, req.Quantity, middleware.GetSessionID(c), middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ürün sepete eklendi",
	})
}

// UpdateQuantity handles POST /cart/update-quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	sessionID, userID := middleware.GetSessionID(c), middleware.UserIDPtr(c)

	ok, err := h.cartService.UpdateCartItem(ctx, sessionID, userID, req.CartItemID, req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Miktar güncellenemedi, stok yetersiz veya ürün sepette değil",
		})
		return
	}

	summary, err := h.cartService.GetCartSummary(ctx, sessionID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"totalPrice": summary.TotalPrice,
		"totalItems": summary.TotalItems,
	})
}

// RemoveItem handles POST /cart/remove
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req cart.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	sessionID, userID := middleware.GetSessionID(c), middleware.UserIDPtr(c)

	ok, err := h.cartService.RemoveFromCart(ctx, sessionID, userID, req.CartItemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	summary, err := h.cartService.GetCartSummary(ctx, sessionID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    ok,
		"totalPrice": summary.TotalPrice,
		"totalItems": summary.TotalItems,
		"isEmpty":    summary.IsEmpty,
	})
}

// ClearCart handles POST /cart/clear
func (h *CartHandler) ClearCart(c *gin.Context) {
	ok, err := h.cartService.ClearCart(c.Request.Context(), middleware.GetSessionID(c), middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "Sepet temizlendi"
	if !ok {
		message = "Sepet bulunamadı"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": ok,
		"message": message,
	})
}

// GetSummary handles GET /cart/summary
func (h *CartHandler) GetSummary(c *gin.Context) {
	summary, err := h.cartService.GetCartSummary(c.Request.Context(), middleware.GetSessionID(c), middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetCount handles GET /cart/count
func (h *CartHandler) GetCount(c *gin.Context) {
	count, err := h.cartService.GetCartItemCount(c.Request.Context(), middleware.GetSessionID(c), middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

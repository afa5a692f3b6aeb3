// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/eticaret/storefront/internal/domain/checkout"
	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles the checkout form and order placement
type CheckoutHandler struct {
	checkoutService *checkout.Service
	orderService    *order.Service
	log             *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkouts *checkout.Service, orders *order.Service, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkouts, orderService: orders, log: log}
}

// GetCheckout handles GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.checkoutService.GetCheckoutView(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PlaceOrder handles POST /checkout. Validation failures come back with
// the checkout view so the form can be shown again.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rerender(c, userID, apperr.Validation("teslimat adresi ve ödeme yöntemi seçilmelidir"))
		return
	}

	created, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		if apperr.IsValidation(err) {
			h.rerender(c, userID, err)
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Siparişiniz alındı",
		"orderId":     created.ID,
		"orderNumber": created.OrderNumber,
		"redirect":    fmt.Sprintf("/orders/%d", created.ID),
	})
}

func (h *CheckoutHandler) rerender(c *gin.Context, userID uint, cause error) {
	view, err := h.checkoutService.GetCheckoutView(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success":  false,
		"message":  cause.Error(),
		"checkout": view,
	})
}

// ValidateCheckout handles POST /checkout/validate
func (h *CheckoutHandler) ValidateCheckout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.checkoutService.ValidateCheckout(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

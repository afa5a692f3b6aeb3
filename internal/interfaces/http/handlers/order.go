// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/eticaret/storefront/internal/pkg/export"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles customer order endpoints
type OrderHandler struct {
	orderService *order.Service
	log          *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{orderService: orders, log: log}
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.orderService.GetUserOrderList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetOrderByNumber handles GET /orders/number/:number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	o, err := h.orderService.GetOrderByNumber(c.Request.Context(), c.Param("number"), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetOrderStatus handles GET /orders/:id/status
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             o.ID,
		"orderNumber":    o.OrderNumber,
		"status":         o.Status,
		"statusText":     o.StatusLabel(),
		"canBeCancelled": o.CanBeCancelled(),
		"updatedAt":      o.UpdatedAt,
	})
}

// CancelOrder handles POST /order/cancel/:id
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	cancelled, err := h.orderService.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !cancelled {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Sipariş iptal edilemedi. Yalnızca bekleyen siparişler iptal edilebilir.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sipariş iptal edildi",
	})
}

// AdminOrderHandler handles order management for admins
type AdminOrderHandler struct {
	orderService *order.Service
	events       http.Handler
	log          *logrus.Logger
}

// NewAdminOrderHandler creates a new admin order handler. events serves the
// websocket feed and may be nil.
func NewAdminOrderHandler(orders *order.Service, events http.Handler, log *logrus.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orders, events: events, log: log}
}

// ListOrders handles GET /admin/orders
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.orderService.GetAllOrders(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder handles GET /admin/orders/:id
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrderForAdmin(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":        o,
		"nextStatuses": order.NextStatuses(o.Status),
	})
}

// UpdateStatus handles POST /admin/orders/update-status/:id
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.Status, adminID, req.Comment); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sipariş durumu '%s' olarak güncellendi", req.Status.Label()),
	})
}

// ExportOrders handles GET /admin/orders/export
func (h *AdminOrderHandler) ExportOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	orders, err := h.orderService.ExportOrders(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("siparisler-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)

	if err := export.WriteOrders(c.Writer, orders); err != nil {
		h.log.WithError(err).Error("order export failed mid-stream")
	}
}

// Events handles GET /admin/orders/events (websocket upgrade)
func (h *AdminOrderHandler) Events(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Order events are not enabled",
		})
		return
	}
	h.events.ServeHTTP(c.Writer, c.Request)
}

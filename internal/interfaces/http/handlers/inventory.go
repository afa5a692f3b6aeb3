// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/eticaret/storefront/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InventoryHandler handles admin stock endpoints
type InventoryHandler struct {
	inventoryService  *inventory.Service
	lowStockThreshold int
	log               *logrus.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(stock *inventory.Service, lowStockThreshold int, log *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{inventoryService: stock, lowStockThreshold: lowStockThreshold, log: log}
}

// AdjustStock handles POST /admin/products/:id/stock
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req inventory.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.inventoryService.AdjustStock(c.Request.Context(), productID, req.Delta, req.Note, adminID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stock updated",
		"data":    movement,
	})
}

// GetMovements handles GET /admin/products/:id/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	movements, err := h.inventoryService.GetMovements(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movements})
}

// GetLowStock handles GET /admin/products/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	threshold := queryInt(c, "threshold", h.lowStockThreshold, 0)

	products, err := h.inventoryService.GetLowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "threshold": threshold})
}

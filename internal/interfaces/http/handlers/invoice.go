// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eticaret/storefront/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InvoiceRenderer produces an order invoice as PDF or HTML
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
	RenderInvoiceHTML(o *order.Order) ([]byte, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orderService *order.Service
	renderer     InvoiceRenderer
	log          *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *order.Service, renderer InvoiceRenderer, log *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{orderService: orders, renderer: renderer, log: log}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	o, ok := h.ownedOrder(c)
	if !ok {
		return
	}
	h.sendPDF(c, o)
}

// PreviewInvoice handles GET /orders/:id/invoice/preview
func (h *InvoiceHandler) PreviewInvoice(c *gin.Context) {
	o, ok := h.ownedOrder(c)
	if !ok {
		return
	}

	html, err := h.renderer.RenderInvoiceHTML(o)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// AdminGenerateInvoice handles GET /admin/orders/:id/invoice
func (h *InvoiceHandler) AdminGenerateInvoice(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrderForAdmin(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.sendPDF(c, o)
}

func (h *InvoiceHandler) ownedOrder(c *gin.Context) (*order.Order, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}

	// scoped to the caller, a foreign order reads as not found
	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	return o, true
}

func (h *InvoiceHandler) sendPDF(c *gin.Context, o *order.Order) {
	pdfBuffer, err := h.renderer.GenerateInvoice(o)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("invoice %s: %w", o.OrderNumber, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=fatura-%s.pdf", o.OrderNumber))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

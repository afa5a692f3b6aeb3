// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"net/http"

	"github.com/eticaret/storefront/internal/domain/address"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserAddressHandler handles the address book
type UserAddressHandler struct {
	addressService *address.Service
	log            *logrus.Logger
}

// NewUserAddressHandler creates a new user address handler
func NewUserAddressHandler(addresses *address.Service, log *logrus.Logger) *UserAddressHandler {
	return &UserAddressHandler{addressService: addresses, log: log}
}

// GetAddresses handles GET /addresses
func (h *UserAddressHandler) GetAddresses(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.GetUserAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": addresses})
}

// GetAddress handles GET /addresses/:id
func (h *UserAddressHandler) GetAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	a, err := h.addressService.GetAddress(c.Request.Context(), addressID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a})
}

// CreateAddress handles POST /addresses
func (h *UserAddressHandler) CreateAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req address.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	a, err := h.addressService.CreateAddress(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Adres eklendi",
		"data":    a,
	})
}

// UpdateAddress handles PUT /addresses/:id
func (h *UserAddressHandler) UpdateAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req address.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.addressService.UpdateAddress(c.Request.Context(), addressID, userID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !updated {
		respondError(c, h.log, apperr.NotFound("address"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Adres güncellendi"})
}

// DeleteAddress handles DELETE /addresses/:id
func (h *UserAddressHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.addressService.DeleteAddress(c.Request.Context(), addressID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		respondError(c, h.log, apperr.NotFound("address"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Adres silindi"})
}

// SetDefaultAddress handles POST /addresses/:id/default
func (h *UserAddressHandler) SetDefaultAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := idParam(c, "id")
	if !ok {
		return
	}

	changed, err := h.addressService.SetDefaultAddress(c.Request.Context(), addressID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !changed {
		respondError(c, h.log, apperr.NotFound("address"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Varsayılan adres güncellendi"})
}

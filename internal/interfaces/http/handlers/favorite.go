package handlers

import (
	"net/http"

	"github.com/eticaret/storefront/internal/domain/favorite"
	"github.com/eticaret/storefront/internal/interfaces/http/middleware"
	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FavoriteHandler handles the user's favorite products
type FavoriteHandler struct {
	favoriteService *favorite.Service
	log             *logrus.Logger
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites *favorite.Service, log *logrus.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favorites, log: log}
}

// GetFavorites handles GET /favorites
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	favorites, err := h.favoriteService.GetFavorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    favorites,
		"count":   len(favorites),
	})
}

// AddFavorite handles POST /favorites
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req favorite.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fav, err := h.favoriteService.AddFavorite(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Ürün favorilere eklendi",
		"data":    fav,
	})
}

// RemoveFavorite handles DELETE /favorites/:productId
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	removed, err := h.favoriteService.RemoveFavorite(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !removed {
		respondError(c, h.log, apperr.NotFound("favorite"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ürün favorilerden çıkarıldı"})
}

// CheckFavorite handles GET /favorites/check/:productId
func (h *FavoriteHandler) CheckFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	isFavorite, err := h.favoriteService.IsFavorite(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite})
}

// GetCount handles GET /favorites/count
func (h *FavoriteHandler) GetCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.favoriteService.GetFavoriteCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MoveToCart handles POST /favorites/:productId/move-to-cart
func (h *FavoriteHandler) MoveToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	var req favorite.MoveToCartRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	if err := h.favoriteService.MoveToCart(c.Request.Context(), userID, productID, req.Quantity, middleware.GetSessionID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ürün sepete taşındı"})
}

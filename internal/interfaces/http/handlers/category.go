// internal/interfaces/http/handlers/category.go
package handlers

import (
	"net/http"

	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CategoryHandler handles categories, brands and home page sliders
type CategoryHandler struct {
	categoryService *product.CategoryService
	log             *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *product.CategoryService, log *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: categories, log: log}
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// GetTopMenu handles GET /categories/top-menu
func (h *CategoryHandler) GetTopMenu(c *gin.Context) {
	categories, err := h.categoryService.GetTopMenuCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": category})
}

// AdminCreateCategory handles POST /admin/categories
func (h *CategoryHandler) AdminCreateCategory(c *gin.Context) {
	var req product.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": category})
}

// AdminUpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandler) AdminUpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req product.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": category})
}

// AdminDeleteCategory handles DELETE /admin/categories/:id
func (h *CategoryHandler) AdminDeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}

// GetBrands handles GET /brands
func (h *CategoryHandler) GetBrands(c *gin.Context) {
	brands, err := h.categoryService.GetBrands(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brands})
}

// GetBrand handles GET /brands/:id
func (h *CategoryHandler) GetBrand(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	brand, err := h.categoryService.GetBrand(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brand})
}

// AdminCreateBrand handles POST /admin/brands
func (h *CategoryHandler) AdminCreateBrand(c *gin.Context) {
	var req product.BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	brand, err := h.categoryService.CreateBrand(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": brand})
}

// AdminUpdateBrand handles PUT /admin/brands/:id
func (h *CategoryHandler) AdminUpdateBrand(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req product.BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	brand, err := h.categoryService.UpdateBrand(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": brand})
}

// AdminDeleteBrand handles DELETE /admin/brands/:id
func (h *CategoryHandler) AdminDeleteBrand(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteBrand(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Brand deleted successfully"})
}

// GetSliders handles GET /sliders
func (h *CategoryHandler) GetSliders(c *gin.Context) {
	sliders, err := h.categoryService.GetSliders(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sliders})
}

// AdminCreateSlider handles POST /admin/sliders
func (h *CategoryHandler) AdminCreateSlider(c *gin.Context) {
	var req product.SliderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	slider, err := h.categoryService.CreateSlider(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": slider})
}

// AdminUpdateSlider handles PUT /admin/sliders/:id
func (h *CategoryHandler) AdminUpdateSlider(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req product.SliderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	slider, err := h.categoryService.UpdateSlider(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": slider})
}

// AdminDeleteSlider handles DELETE /admin/sliders/:id
func (h *CategoryHandler) AdminDeleteSlider(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteSlider(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Slider deleted successfully"})
}

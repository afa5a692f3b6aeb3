// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/eticaret/storefront/internal/domain/product"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles catalog product endpoints
type ProductHandler struct {
	productService *product.Service
	log            *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{productService: products, log: log}
}

// GetProducts handles GET /products. Optional filters: q, category_id,
// brand_id; the first one present wins.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		products []product.Product
		err      error
	)
	switch {
	case c.Query("q") != "":
		products, err = h.productService.SearchProducts(ctx, c.Query("q"))
	case c.Query("category_id") != "":
		id, perr := strconv.ParseUint(c.Query("category_id"), 10, 32)
		if perr != nil {
			respondBindError(c, perr)
			return
		}
		products, err = h.productService.GetProductsByCategory(ctx, uint(id))
	case c.Query("brand_id") != "":
		id, perr := strconv.ParseUint(c.Query("brand_id"), 10, 32)
		if perr != nil {
			respondBindError(c, perr)
			return
		}
		products, err = h.productService.GetProductsByBrand(ctx, uint(id))
	default:
		products, err = h.productService.GetAllProducts(ctx)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

// GetFeatured handles GET /products/featured
func (h *ProductHandler) GetFeatured(c *gin.Context) {
	h.list(c, func() ([]product.Product, error) {
		return h.productService.GetFeaturedProducts(c.Request.Context())
	})
}

// GetNewest handles GET /products/newest
func (h *ProductHandler) GetNewest(c *gin.Context) {
	count := queryInt(c, "count", 10, 50)
	h.list(c, func() ([]product.Product, error) {
		return h.productService.GetNewestProducts(c.Request.Context(), count)
	})
}

// GetTopSelling handles GET /products/top-selling
func (h *ProductHandler) GetTopSelling(c *gin.Context) {
	count := queryInt(c, "count", 10, 50)
	h.list(c, func() ([]product.Product, error) {
		return h.productService.GetTopSellingProducts(c.Request.Context(), count)
	})
}

// GetRelated handles GET /products/:id/related
func (h *ProductHandler) GetRelated(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	count := queryInt(c, "count", 4, 20)
	h.list(c, func() ([]product.Product, error) {
		return h.productService.GetRelatedProducts(c.Request.Context(), id, count)
	})
}

// GetStockStatus handles GET /products/:id/in-stock
func (h *ProductHandler) GetStockStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	inStock, err := h.productService.IsProductInStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": id, "inStock": inStock})
}

func (h *ProductHandler) list(c *gin.Context, load func() ([]product.Product, error)) {
	products, err := load()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"data":    p,
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req product.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product updated successfully",
		"data":    p,
	})
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

// AdminGetStatistics handles GET /admin/statistics/products
func (h *ProductHandler) AdminGetStatistics(c *gin.Context) {
	stats, err := h.productService.GetProductStatistics(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

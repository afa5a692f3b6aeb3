// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/eticaret/storefront/internal/domain/analytics"
	"github.com/eticaret/storefront/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler handles admin statistics and cache maintenance
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	cache            cache.Cache
	log              *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(stats *analytics.Service, c cache.Cache, log *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: stats, cache: c, log: log}
}

// GetDashboard handles GET /admin/dashboard
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetOrderStatistics handles GET /admin/statistics/orders
func (h *AnalyticsHandler) GetOrderStatistics(c *gin.Context) {
	stats, err := h.analyticsService.GetOrderStatistics(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetCacheStats handles GET /admin/cache/stats
func (h *AnalyticsHandler) GetCacheStats(c *gin.Context) {
	stats, err := h.cache.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearCache handles DELETE /admin/cache. With ?pattern= only matching
// keys are dropped.
func (h *AnalyticsHandler) ClearCache(c *gin.Context) {
	ctx := c.Request.Context()

	if pattern := c.Query("pattern"); pattern != "" {
		removed, err := h.cache.DeleteByPattern(ctx, pattern)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		h.log.WithFields(logrus.Fields{"pattern": pattern, "removed": removed}).Info("cache entries cleared")
		c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
		return
	}

	if err := h.cache.Clear(ctx); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("cache cleared")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cache cleared"})
}

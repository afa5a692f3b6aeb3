// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"time"

	"github.com/eticaret/storefront/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.Security.CORSAllowedMethods,
		AllowHeaders:     cfg.Security.CORSAllowedHeaders,
		ExposeHeaders:    []string{"Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           24 * time.Hour,
	}

	for _, origin := range cfg.Security.CORSAllowedOrigins {
		if origin == "*" {
			// credentials cannot be combined with a literal wildcard
			corsConfig.AllowOriginFunc = func(string) bool { return true }
			return cors.New(corsConfig)
		}
	}
	if len(cfg.Security.CORSAllowedOrigins) == 0 {
		corsConfig.AllowOriginFunc = func(string) bool { return false }
		return cors.New(corsConfig)
	}
	corsConfig.AllowOrigins = cfg.Security.CORSAllowedOrigins

	return cors.New(corsConfig)
}

package middleware

import (
	"net/http"

	"github.com/eticaret/storefront/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ctxSessionID = "session_id"

// Session makes sure every visitor carries an anonymous session token.
// Guest carts are keyed by it.
func Session(cfg *config.Config) gin.HandlerFunc {
	name := cfg.Session.CookieName
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(name)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, sessionID, cfg.Session.MaxAge, "/", "", cfg.Session.Secure, true)
		}
		c.Set(ctxSessionID, sessionID)
		c.Next()
	}
}

// GetSessionID returns the token set by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

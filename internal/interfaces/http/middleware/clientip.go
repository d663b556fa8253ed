package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/shared/constants"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

// ClientIP resolves the caller address from the configured proxy and CDN
// headers. The result may be utils.UnknownIP.
func ClientIP(resolver utils.ClientIPResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyClientIP, resolver.Resolve(c.Request.Header))
		c.Next()
	}
}

// GetClientIP returns the address set by ClientIP.
func GetClientIP(c *gin.Context) string {
	if ip := c.GetString(constants.ContextKeyClientIP); ip != "" {
		return ip
	}
	return utils.UnknownIP
}

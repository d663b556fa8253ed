package utils

import (
	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the default cookie set by the auth provider.
const AccessTokenCookie = "access_token"

// GetTokenFromCookie returns the cookie value or "" when absent.
func GetTokenFromCookie(c *gin.Context, cookieName string) string {
	if cookieName == "" {
		cookieName = AccessTokenCookie
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

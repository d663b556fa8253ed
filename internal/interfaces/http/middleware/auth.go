package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/applytrack/internal/infrastructure/auth"
	"github.com/applytrack/applytrack/internal/shared/constants"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
	"github.com/applytrack/applytrack/internal/shared/logger"
	"github.com/applytrack/applytrack/internal/shared/utils"
)

const contextKeyPrincipal = "principal"

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

type AuthMiddleware struct {
	verifier   TokenVerifier
	cookieName string
	logger     logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, cookieName string, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:   verifier,
		cookieName: cookieName,
		logger:     logger,
	}
}

// extractToken prefers the session cookie, then the Authorization header.
// ok is false when a header is present but malformed.
func (m *AuthMiddleware) extractToken(c *gin.Context) (token string, ok bool) {
	if token := utils.GetTokenFromCookie(c, m.cookieName); token != "" {
		return token, true
	}

	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if authHeader == "" {
		return "", true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := m.extractToken(c)
		if !ok {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("invalid authorization header format"))
			c.Abort()
			return
		}
		if token == "" {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("missing authorization token"))
			c.Abort()
			return
		}

		principal, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("invalid or expired token"))
			c.Abort()
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present. A bad or
// expired token is treated as anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := m.extractToken(c)
		if !ok || token == "" {
			c.Next()
			return
		}

		principal, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Debugw("ignoring invalid token on optional auth route", "error", err)
			c.Next()
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(contextKeyPrincipal, p)
	c.Set(constants.ContextKeyUserID, p.Identity.UserID)
	c.Set(constants.ContextKeyEmail, p.Identity.Email)
	c.Set(constants.ContextKeyTier, string(p.Tier))
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (*auth.Principal, bool) {
	v, exists := c.Get(contextKeyPrincipal)
	if !exists {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}

// SetPrincipal is used by handler tests to simulate the auth middleware.
func SetPrincipal(c *gin.Context, p *auth.Principal) {
	setPrincipal(c, p)
}

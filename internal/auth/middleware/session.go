package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vox-librorum/vox-desk/internal/auth"
	"github.com/vox-librorum/vox-desk/internal/auth/service"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

// RequireSession validates the session token carried in the cookie or an
// Authorization bearer header. A missing token is 401, an invalid or expired one 403.
func RequireSession(tokens TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing session"})
			c.Abort()
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "invalid session"})
			c.Abort()
			return
		}

		c.Set(auth.CtxUserID, claims.Subject)
		c.Set(auth.CtxUsername, claims.Name)
		c.Set(auth.CtxRole, claims.Role)
		c.Next()
	}
}

// extractToken prefers the session cookie, then the Bearer header
func extractToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// UserID extracts the authenticated user id from the Gin context.
// This is set by middleware.RequireSession.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// Username extracts the authenticated username from the Gin context.
func Username(c *gin.Context) string {
	return c.GetString(CtxUsername)
}

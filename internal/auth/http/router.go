package http

import "github.com/gin-gonic/gin"

// Register mounts the auth routes. requireSession guards /me and loginLimit
// throttles credential attempts.
func (h *Handler) Register(rg *gin.RouterGroup, requireSession, loginLimit gin.HandlerFunc) {
	rg.POST("/register", loginLimit, h.register)
	rg.POST("/login", loginLimit, h.login)
	rg.POST("/logout", h.logout)
	rg.GET("/me", requireSession, h.me)
}

package http

import "github.com/gin-gonic/gin"

// Register mounts the desk routes. The group must already require a session.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.state)
	rg.POST("/projects", h.createProject)
	rg.POST("/projects/:id/load", h.loadProject)
	rg.POST("/resources", h.importResource)
	rg.DELETE("/resources/:id", h.removeResource)
	rg.GET("/resources/:id/citation", h.citation)
	rg.POST("/reorder", h.reorder)
	rg.POST("/pins/:id", h.togglePin)
	rg.GET("/share", h.share)
	rg.POST("/bookmark", h.bookmark)
	rg.POST("/focus", h.focus)
	rg.POST("/close", h.close)
	rg.POST("/conduit", h.submit)
	rg.GET("/conduit", h.conduit)
	rg.GET("/conduit/stream", h.stream)
}

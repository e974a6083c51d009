package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vox-librorum/vox-desk/internal/library"
)

type Handler struct {
	lib *library.Library
}

func New(lib *library.Library) *Handler {
	return &Handler{lib: lib}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	items := h.lib.Search(c.Query("q"), c.Query("type"))
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

func (h *Handler) get(c *gin.Context) {
	res, ok := h.lib.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "artifact not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": res})
}

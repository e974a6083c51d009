package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/auth"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

// controller resolves the caller's desk or writes the error response.
func (h *Handler) controller(c *gin.Context) (*workspace.Controller, bool) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing session"})
		return nil, false
	}

	ctrl, err := h.desks.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, workspace.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "sign-in required"})
			return nil, false
		}
		h.log.Error("open desk", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to open desk"})
		return nil, false
	}
	return ctrl, true
}

func respondState(c *gin.Context, ctrl *workspace.Controller, changed bool) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "changed": changed, "state": ctrl.Snapshot()})
}

func (h *Handler) state(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	respondState(c, ctrl, false)
}

func (h *Handler) createProject(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title required"})
		return
	}

	id, created := ctrl.CreateProject(c.Request.Context(), req.Title)
	c.JSON(http.StatusOK, gin.H{"ok": true, "changed": created, "id": id, "state": ctrl.Snapshot()})
}

func (h *Handler) loadProject(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	respondState(c, ctrl, ctrl.LoadProject(c.Param("id")))
}

func (h *Handler) importResource(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req importReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "library id required"})
		return
	}
	respondState(c, ctrl, ctrl.ImportByID(c.Request.Context(), req.ID))
}

func (h *Handler) removeResource(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	respondState(c, ctrl, ctrl.RemoveResource(c.Request.Context(), c.Param("id")))
}

func (h *Handler) reorder(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "from and to are required"})
		return
	}
	respondState(c, ctrl, ctrl.Reorder(c.Request.Context(), *req.From, *req.To))
}

func (h *Handler) togglePin(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	pinned, found := ctrl.TogglePinByID(c.Request.Context(), c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "resource not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "pinned": pinned, "state": ctrl.Snapshot()})
}

func (h *Handler) citation(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	text, found := ctrl.Citation(c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "resource not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "citation": text})
}

func (h *Handler) share(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	text, found := ctrl.ShareLink()
	if !found {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "no active project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "text": text})
}

func (h *Handler) bookmark(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctrl.Bookmark()
	respondState(c, ctrl, true)
}

func (h *Handler) focus(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	ctrl.ToggleFocus()
	respondState(c, ctrl, true)
}

// close releases the caller's desk; the next request opens a fresh one from the stores.
func (h *Handler) close(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing session"})
		return
	}
	h.desks.Drop(userID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) submit(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req conduitReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "text required"})
		return
	}
	ctrl.Submit(req.Text)
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

func (h *Handler) conduit(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var since uint64
	if v := c.Query("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "since must be a sequence number"})
			return
		}
		since = n
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entries": ctrl.Conduit().Since(since)})
}

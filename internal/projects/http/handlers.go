package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/auth"
	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// projectReq accepts resources either as an array or as serialized text.
type projectReq struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Resources     json.RawMessage `json:"resources"`
	ResourcesJSON json.RawMessage `json:"resources_json"`
	AIContext     string          `json:"aiContext"`
}

func (r projectReq) project() (domain.Project, error) {
	raw := r.Resources
	if len(raw) == 0 {
		raw = r.ResourcesJSON
	}
	res, err := domain.ParseResources(raw)
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{
		ID:          strings.TrimSpace(r.ID),
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Resources:   res,
		AIContext:   r.AIContext,
	}, nil
}

// list answers with a bare array of stored records, resources as serialized text.
func (h *Handler) list(c *gin.Context) {
	userID := auth.UserID(c)
	items, err := h.svc.ListRecords(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list projects", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load projects"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := req.project()
	if err != nil || p.ID == "" || p.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	rec, err := h.svc.Create(c.Request.Context(), userID, p)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project id already exists"})
			return
		}
		h.log.Error("create project", zap.String("user_id", userID), zap.String("project_id", p.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to create project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": rec})
}

func (h *Handler) save(c *gin.Context) {
	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := req.project()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p.ID = c.Param("id")
	if p.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "title required"})
		return
	}

	userID := auth.UserID(c)
	rec, err := h.svc.Save(c.Request.Context(), userID, p)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
			return
		}
		h.log.Error("save project", zap.String("user_id", userID), zap.String("project_id", p.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to save project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": rec})
}

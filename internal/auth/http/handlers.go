package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/auth"
	"github.com/vox-librorum/vox-desk/internal/auth/domain"
)

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "username and password are required"})
		case errors.Is(err, domain.ErrDuplicateUser):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "username or email already exists"})
		default:
			h.log.Error("register user", zap.String("username", req.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "userId": user.ID})
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "username and password are required"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid credentials"})
		default:
			h.log.Error("login", zap.String("username", req.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "login failed"})
		}
		return
	}

	if sess.Offline {
		h.log.Warn("offline passphrase login", zap.String("username", sess.User.Username))
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sess.Token, int(h.authService.Tokens().TTL().Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": sess.User, "offline": sess.Offline})
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), auth.UserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		h.log.Error("load profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

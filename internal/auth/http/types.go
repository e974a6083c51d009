package http

import (
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/auth/service"
)

// CookieOptions controls the session cookie written on login.
type CookieOptions struct {
	Name   string
	Secure bool
}

type Handler struct {
	authService *service.AuthService
	cookie      CookieOptions
	log         *zap.Logger
}

func New(authService *service.AuthService, cookie CookieOptions, log *zap.Logger) *Handler {
	return &Handler{
		authService: authService,
		cookie:      cookie,
		log:         log,
	}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

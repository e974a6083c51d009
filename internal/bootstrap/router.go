package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/vox-librorum/vox-desk/internal/api/http"
	"github.com/vox-librorum/vox-desk/internal/api/http/middleware"
	authhttp "github.com/vox-librorum/vox-desk/internal/auth/http"
	authmw "github.com/vox-librorum/vox-desk/internal/auth/middleware"
	deskhttp "github.com/vox-librorum/vox-desk/internal/desk/http"
	libraryhttp "github.com/vox-librorum/vox-desk/internal/library/http"
	projectshttp "github.com/vox-librorum/vox-desk/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Deps
	Services *Services
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	// cors rejects an empty origin list, so browsers are only served when origins are set
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	var db, rdb httpapi.Pinger
	if dep.DB != nil {
		db = dep.DB
	}
	if dep.Redis != nil {
		rdb = httpapi.PingFunc(func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() })
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, cfg.App.OfflineMode, db, rdb, dep.Library.Len)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	requireSession := authmw.RequireSession(dep.Services.Tokens, cfg.Auth.CookieName)
	loginLimit := authmw.NewIPRateLimiter(cfg.Auth.LoginRatePerMin).Middleware()

	cookie := authhttp.CookieOptions{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
	authhttp.New(dep.Services.Auth, cookie, dep.Log).Register(api.Group("/auth"), requireSession, loginLimit)

	projectshttp.New(dep.Services.Projects, dep.Log).Register(api.Group("/projects", requireSession))
	libraryhttp.New(dep.Library).Register(api.Group("/library"))
	deskhttp.New(dep.Services.Desks, dep.Log).Register(api.Group("/desk", requireSession))

	return r
}

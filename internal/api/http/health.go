package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a backing store that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Mode      string    `json:"mode"`
	DB        string    `json:"db"`
	Redis     string    `json:"redis"`
	Library   int       `json:"library"`
}

type HealthHandler struct {
	serviceName string
	version     string
	offline     bool
	db          Pinger
	redis       Pinger
	library     func() int
}

// NewHealthHandler reports on the given stores; a nil store is reported as disabled.
func NewHealthHandler(serviceName, version string, offline bool, db, redis Pinger, library func() int) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		offline:     offline,
		db:          db,
		redis:       redis,
		library:     library,
	}
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Mode:      "online",
		DB:        ping(c.Request.Context(), h.db),
		Redis:     ping(c.Request.Context(), h.redis),
	}
	if h.offline {
		resp.Mode = "offline"
	}
	if h.library != nil {
		resp.Library = h.library()
	}

	code := http.StatusOK
	if resp.DB == "down" {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/desk/service"
)

type Handler struct {
	desks     *service.Manager
	log       *zap.Logger
	keepAlive time.Duration
}

func New(desks *service.Manager, log *zap.Logger) *Handler {
	return &Handler{
		desks:     desks,
		log:       log,
		keepAlive: 15 * time.Second,
	}
}

type createProjectReq struct {
	Title string `json:"title"`
}

type importReq struct {
	ID string `json:"id"`
}

type reorderReq struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type conduitReq struct {
	Text string `json:"text"`
}

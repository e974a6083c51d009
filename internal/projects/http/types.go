package http

import (
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
	log *zap.Logger
}

func New(svc *service.ProjectService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

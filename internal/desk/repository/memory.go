package repository

import (
	"context"
	"sync"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// MemoryPinRepository keeps pinned sets in process memory when Redis is not configured.
type MemoryPinRepository struct {
	mu   sync.RWMutex
	pins map[string][]domain.Resource
}

func NewMemoryPinRepository() *MemoryPinRepository {
	return &MemoryPinRepository{pins: make(map[string][]domain.Resource)}
}

func (r *MemoryPinRepository) Load(_ context.Context, userID string) ([]domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.pins[userID]), nil
}

func (r *MemoryPinRepository) Save(_ context.Context, userID string, pins []domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[userID] = cloneAll(pins)
	return nil
}

func cloneAll(in []domain.Resource) []domain.Resource {
	out := make([]domain.Resource, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vox-librorum/vox-desk/internal/auth/domain"
)

// MemoryUserRepository keeps accounts in process memory. Only offline mode uses it.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	names map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:  make(map[string]*domain.User),
		names: make(map[string]string),
	}
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[user.Username]; ok {
		return domain.ErrDuplicateUser
	}
	if _, ok := r.byID[user.ID]; ok {
		return domain.ErrDuplicateUser
	}
	if user.Email != "" {
		for _, u := range r.byID {
			if strings.EqualFold(u.Email, user.Email) {
				return domain.ErrDuplicateUser
			}
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.byID[user.ID] = &stored
	r.names[user.Username] = user.ID
	return nil
}

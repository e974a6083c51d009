package service

import (
	"context"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// ProjectService is the server-side project store, shared by all users.
type ProjectService interface {
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Create(ctx context.Context, ownerID string, p domain.Project) (*domain.Record, error)
	Save(ctx context.Context, ownerID string, p domain.Project) (*domain.Record, error)
}

// PinRepository persists pinned sets keyed by user.
type PinRepository interface {
	Load(ctx context.Context, userID string) ([]domain.Resource, error)
	Save(ctx context.Context, userID string, pins []domain.Resource) error
}

// ownerProjects binds the shared project service to one owner.
type ownerProjects struct {
	svc   ProjectService
	owner string
}

func (o ownerProjects) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return o.svc.List(ctx, o.owner)
}

func (o ownerProjects) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	rec, err := o.svc.Create(ctx, o.owner, p)
	if err != nil {
		return domain.Project{}, err
	}
	return rec.Project()
}

func (o ownerProjects) SaveProject(ctx context.Context, p domain.Project) error {
	_, err := o.svc.Save(ctx, o.owner, p)
	return err
}

// userPins binds a pin repository to one user.
type userPins struct {
	repo PinRepository
	user string
}

func (u userPins) LoadPins(ctx context.Context) ([]domain.Resource, error) {
	return u.repo.Load(ctx, u.user)
}

func (u userPins) SavePins(ctx context.Context, pins []domain.Resource) error {
	return u.repo.Save(ctx, u.user, pins)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// Repository is implemented by the PostgreSQL and in-memory project repositories.
type Repository interface {
	Create(ctx context.Context, rec domain.Record) (*domain.Record, error)
	List(ctx context.Context, ownerID string) ([]domain.Record, error)
	Save(ctx context.Context, rec domain.Record) (*domain.Record, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo Repository
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository) *ProjectService {
	return &ProjectService{
		repo: repo,
	}
}

// ListRecords returns the owner's projects in their stored form.
func (s *ProjectService) ListRecords(ctx context.Context, ownerID string) ([]domain.Record, error) {
	return s.repo.List(ctx, ownerID)
}

// List returns the owner's projects with resources parsed into ordered form.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	recs, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.Project()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Create stores a new project for the owner.
func (s *ProjectService) Create(ctx context.Context, ownerID string, p domain.Project) (*domain.Record, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = strings.TrimSpace(p.Title)
	if p.ID == "" || p.Title == "" {
		return nil, fmt.Errorf("%w: id and title are required", domain.ErrInvalidInput)
	}

	rec, err := domain.NewRecord(ownerID, p)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, rec)
}

// Save writes back title, description, resource order and context of an existing project.
func (s *ProjectService) Save(ctx context.Context, ownerID string, p domain.Project) (*domain.Record, error) {
	rec, err := domain.NewRecord(ownerID, p)
	if err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, rec)
}

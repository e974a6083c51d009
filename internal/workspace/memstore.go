package workspace

import (
	"context"
	"sync"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// MemoryStore keeps projects and pins in memory. It backs offline desks and tests.
type MemoryStore struct {
	mu       sync.Mutex
	projects []domain.Project
	pins     []domain.Resource

	// ListErr and SaveErr, when set, are returned by the matching calls.
	ListErr error
	SaveErr error
}

func NewMemoryStore(projects []domain.Project) *MemoryStore {
	s := &MemoryStore{}
	for _, p := range projects {
		s.projects = append(s.projects, p.Clone())
	}
	return s
}

func (s *MemoryStore) ListProjects(context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]domain.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, p domain.Project) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return domain.Project{}, s.SaveErr
	}
	for _, existing := range s.projects {
		if existing.ID == p.ID {
			return domain.Project{}, domain.ErrDuplicate
		}
	}
	s.projects = append(s.projects, p.Clone())
	return p, nil
}

func (s *MemoryStore) SaveProject(_ context.Context, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p.Clone()
			return nil
		}
	}
	return domain.ErrNotFound
}

// Project returns the stored copy of id.
func (s *MemoryStore) Project(id string) (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Project{}, false
}

func (s *MemoryStore) LoadPins(context.Context) ([]domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePins(s.pins), nil
}

func (s *MemoryStore) SavePins(_ context.Context, pins []domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins = clonePins(pins)
	return nil
}

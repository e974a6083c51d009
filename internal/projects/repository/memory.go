package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// MemoryRepository keeps projects in process memory. It backs offline mode, where
// every owner starts from a copy of the seed projects.
type MemoryRepository struct {
	mu     sync.Mutex
	seed   []domain.Record
	owners map[string][]domain.Record
	now    func() time.Time
}

// NewMemoryRepository creates a repository that hands each new owner a copy of seed.
func NewMemoryRepository(seed []domain.Record) *MemoryRepository {
	return &MemoryRepository{
		seed:   seed,
		owners: make(map[string][]domain.Record),
		now:    time.Now,
	}
}

func (r *MemoryRepository) ensure(ownerID string) []domain.Record {
	recs, ok := r.owners[ownerID]
	if !ok {
		recs = make([]domain.Record, len(r.seed))
		copy(recs, r.seed)
		for i := range recs {
			recs[i].OwnerID = ownerID
		}
		r.owners[ownerID] = recs
	}
	return recs
}

// Create stores a new project; ids are unique per owner.
func (r *MemoryRepository) Create(_ context.Context, rec domain.Record) (*domain.Record, error) {
	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.Title) == "" {
		return nil, domain.ErrInvalidInput
	}
	if rec.ResourcesJSON == "" {
		rec.ResourcesJSON = "[]"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.ensure(rec.OwnerID)
	for _, existing := range recs {
		if existing.ID == rec.ID {
			return nil, domain.ErrDuplicate
		}
	}

	now := r.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.owners[rec.OwnerID] = append(recs, rec)
	return &rec, nil
}

// List returns the owner's projects in creation order.
func (r *MemoryRepository) List(_ context.Context, ownerID string) ([]domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.ensure(ownerID)
	out := make([]domain.Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Save overwrites an existing project.
func (r *MemoryRepository) Save(_ context.Context, rec domain.Record) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.ensure(rec.OwnerID)
	for i, existing := range recs {
		if existing.ID != rec.ID {
			continue
		}
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = r.now()
		recs[i] = rec
		return &rec, nil
	}
	return nil, domain.ErrNotFound
}

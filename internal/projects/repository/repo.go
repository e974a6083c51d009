package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ProjectRepository provides persistence operations for desk projects
type ProjectRepository struct {
	db DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, owner_id::text, title, description, resources_json, ai_context, created_at, updated_at`

// Create inserts a new project for the given owner.
func (r *ProjectRepository) Create(ctx context.Context, rec domain.Record) (*domain.Record, error) {
	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.Title) == "" {
		return nil, domain.ErrInvalidInput
	}
	if rec.OwnerID == "" {
		return nil, fmt.Errorf("owner id required")
	}
	if rec.ResourcesJSON == "" {
		rec.ResourcesJSON = "[]"
	}

	q := `
insert into projects (id, owner_id, title, description, resources_json, ai_context)
values ($1, $2::uuid, $3, $4, $5, $6)
returning ` + projectColumns + `;
`
	out, err := scanRecord(r.db.QueryRow(ctx, q,
		rec.ID, rec.OwnerID, rec.Title, rec.Description, rec.ResourcesJSON, rec.AIContext))
	if err != nil {
		// unique violation on id
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// List returns every project owned by ownerID in creation order.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]domain.Record, error) {
	q := `
select ` + projectColumns + `
from projects
where owner_id = $1::uuid
order by created_at asc, id asc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Record, 0, 16)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Save overwrites the mutable fields of an existing project.
func (r *ProjectRepository) Save(ctx context.Context, rec domain.Record) (*domain.Record, error) {
	q := `
update projects
set title = $3, description = $4, resources_json = $5, ai_context = $6, updated_at = now()
where owner_id = $1::uuid and id = $2
returning ` + projectColumns + `;
`
	out, err := scanRecord(r.db.QueryRow(ctx, q,
		rec.OwnerID, rec.ID, rec.Title, rec.Description, rec.ResourcesJSON, rec.AIContext))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var rec domain.Record
	if err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.Description,
		&rec.ResourcesJSON, &rec.AIContext, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

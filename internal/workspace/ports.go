package workspace

import (
	"context"
	"errors"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// ErrUnauthenticated is returned by a ProjectStore when the session is missing or
// rejected. The controller then withholds all project data and asks for sign-in.
var ErrUnauthenticated = errors.New("sign-in required")

// ProjectStore is the durable home of a user's projects. Implementations return
// resources already parsed into ordered form.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	SaveProject(ctx context.Context, p domain.Project) error
}

// PinStore persists the pinned set independently of any project.
type PinStore interface {
	LoadPins(ctx context.Context) ([]domain.Resource, error)
	SavePins(ctx context.Context, pins []domain.Resource) error
}

// Catalog resolves library ids for imports and citations.
type Catalog interface {
	Get(id string) (domain.Resource, bool)
}

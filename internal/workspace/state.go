package workspace

import "github.com/vox-librorum/vox-desk/internal/projects/domain"

const (
	emptyTitle       = "No Active Projects"
	emptyDescription = "Create a project to begin."
)

// ProjectSummary is a row of the project shelf.
type ProjectSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ResourceCount int    `json:"resourceCount"`
	Active        bool   `json:"active"`
}

// ResourceView is a workspace card.
type ResourceView struct {
	domain.Resource
	Pinned bool `json:"pinned"`
}

// State is a detached projection of the controller. Mutating it has no effect.
type State struct {
	SignInRequired bool              `json:"signInRequired,omitempty"`
	Projects       []ProjectSummary  `json:"projects"`
	ActiveID       string            `json:"activeId"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	AIContext      string            `json:"aiContext,omitempty"`
	Resources      []ResourceView    `json:"resources"`
	Pinned         []domain.Resource `json:"pinned"`
	Focus          bool              `json:"focus"`
	LastSeq        uint64            `json:"lastSeq"`
}

// Package workspace holds the desk's Workspace Controller: the single authority over
// the active project, its ordered resources and the pinned set.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

const (
	defaultDescription = "New investigation awaiting parameters."
	defaultAIContext   = "Initializing new sector scan..."
	importedSummary    = "Imported from Archive. Awaiting full analysis."
	awaitingInput      = "Awaiting input."

	colorError = "red"
	colorEcho  = "rgba(255,255,255,0.8)"
)

// Options tunes a Controller. Zero values fall back to the desk defaults.
type Options struct {
	AssistantDelay time.Duration
	CommandDelay   time.Duration
	// AfterFunc schedules the delayed assistant entries.
	AfterFunc func(d time.Duration, f func())
	Now       func() time.Time
	Catalog   Catalog
	Logger    *zap.Logger
}

// Controller owns one user's workspace session. All methods are safe for
// concurrent use; operations run one at a time.
type Controller struct {
	mu sync.Mutex

	store   ProjectStore
	pins    PinStore
	catalog Catalog
	log     *zap.Logger
	conduit *Conduit

	assistantDelay time.Duration
	commandDelay   time.Duration
	afterFunc      func(time.Duration, func())
	now            func() time.Time

	projects       []domain.Project
	activeID       string
	pinned         []domain.Resource
	focus          bool
	signInRequired bool
	// pinsLoaded is false until the pinned set has been read from the pin store;
	// saving before then would overwrite the durable set.
	pinsLoaded bool
	degraded   bool
}

func NewController(store ProjectStore, pins PinStore, opts Options) *Controller {
	if opts.AssistantDelay <= 0 {
		opts.AssistantDelay = 600 * time.Millisecond
	}
	if opts.CommandDelay <= 0 {
		opts.CommandDelay = 800 * time.Millisecond
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Controller{
		store:          store,
		pins:           pins,
		catalog:        opts.Catalog,
		log:            opts.Logger,
		conduit:        NewConduit(opts.Now),
		assistantDelay: opts.AssistantDelay,
		commandDelay:   opts.CommandDelay,
		afterFunc:      opts.AfterFunc,
		now:            opts.Now,
	}
}

// Conduit exposes the interaction log.
func (c *Controller) Conduit() *Conduit { return c.conduit }

// Init fetches the project list and the pinned set, then activates the first project.
// A failed fetch leaves an empty workspace, a log entry and Degraded set.
// ErrUnauthenticated is the only error returned; the caller must send the user to
// sign-in. Init may be called again to reload.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.projects = nil
	c.activeID = ""
	c.signInRequired = false
	c.degraded = false

	projects, err := c.store.ListProjects(ctx)
	switch {
	case errors.Is(err, ErrUnauthenticated):
		c.signInRequired = true
		c.pinned = nil
		c.pinsLoaded = false
		return ErrUnauthenticated
	case err != nil:
		c.log.Warn("project fetch failed", zap.Error(err))
		c.projects = []domain.Project{}
		c.degraded = true
		c.system("Connection lost. "+html.EscapeString(err.Error()), colorError)
	default:
		c.projects = make([]domain.Project, 0, len(projects))
		for _, p := range projects {
			p = p.Clone()
			if p.Resources == nil {
				p.Resources = []domain.Resource{}
			}
			c.projects = append(c.projects, p)
		}
	}

	if c.pins != nil {
		pins, err := c.pins.LoadPins(ctx)
		if err != nil {
			c.log.Warn("pinned set unavailable", zap.Error(err))
			c.pinsLoaded = false
		} else {
			c.pinned = pins
			c.pinsLoaded = true
		}
	}

	if len(c.projects) > 0 {
		c.load(c.projects[0].ID)
	}
	return nil
}

// SignInRequired reports whether the last fetch was rejected as unauthenticated.
func (c *Controller) SignInRequired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signInRequired
}

// Degraded reports whether the last Init could not fetch the project list.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// LoadProject activates id. Unknown ids are ignored.
func (c *Controller) LoadProject(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(id)
}

func (c *Controller) load(id string) bool {
	p := c.find(id)
	if p == nil {
		return false
	}
	c.activeID = p.ID

	c.conduit.Append(`<strong>System:</strong> Loaded context: "`+html.EscapeString(p.Title)+`"`, true, "")
	hint := p.AIContext
	if hint == "" {
		hint = awaitingInput
	}
	c.afterFunc(c.assistantDelay, func() {
		c.conduit.Append(`<strong>AI:</strong> <span class="ai-text">`+html.EscapeString(hint)+`</span>`, false, "")
	})
	return true
}

// CreateProject appends a project derived from title, activates it and stores it.
// Blank titles are ignored. The new id is returned.
func (c *Controller) CreateProject(ctx context.Context, title string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" || c.signInRequired {
		return "", false
	}

	id := uniqueSlug(Slugify(title), func(s string) bool { return c.find(s) != nil })
	p := domain.Project{
		ID:          id,
		Title:       title,
		Description: defaultDescription,
		Resources:   []domain.Resource{},
		AIContext:   defaultAIContext,
	}
	c.projects = append(c.projects, p)
	c.load(id)
	c.system(`New project "`+html.EscapeString(title)+`" initialized.`, "")

	if _, err := c.store.CreateProject(ctx, p.Clone()); err != nil {
		c.syncFailed(id, err)
	}
	return id, true
}

// AddResourceToProject imports a copy of item into the active project. Importing
// an id the project already holds changes nothing.
func (c *Controller) AddResourceToProject(ctx context.Context, item domain.Resource) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(ctx, item)
}

// ImportByID resolves a library id through the catalog and imports it.
func (c *Controller) ImportByID(ctx context.Context, libraryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog == nil {
		return false
	}
	item, ok := c.catalog.Get(libraryID)
	if !ok {
		c.system(`Archive item "`+html.EscapeString(libraryID)+`" not found.`, colorError)
		return false
	}
	return c.add(ctx, item)
}

func (c *Controller) add(ctx context.Context, item domain.Resource) bool {
	p := c.active()
	if p == nil {
		return false
	}
	if indexOf(p.Resources, item.ID) >= 0 {
		c.system(`Item "`+html.EscapeString(item.Title)+`" is already in workspace.`, "")
		return false
	}

	res := item.Clone()
	if res.Summary == "" {
		res.Summary = res.Desc
	}
	if res.Summary == "" {
		res.Summary = importedSummary
	}
	if res.Tags == nil {
		res.Tags = []string{"Imported"}
	}
	p.Resources = append(p.Resources, res)

	c.system(`Imported "`+html.EscapeString(item.Title)+`" from Archive.`, "")
	c.persist(ctx, p)
	return true
}

// RemoveResource drops id from the active project. Absent ids are ignored.
func (c *Controller) RemoveResource(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.active()
	if p == nil {
		return false
	}
	i := indexOf(p.Resources, id)
	if i < 0 {
		return false
	}

	kept := make([]domain.Resource, 0, len(p.Resources)-1)
	kept = append(kept, p.Resources[:i]...)
	kept = append(kept, p.Resources[i+1:]...)
	p.Resources = kept

	c.system("Resource removed from project.", "")
	c.persist(ctx, p)
	return true
}

// Reorder moves the resource at from so that it ends up at index to. Equal or
// out-of-range indices leave the list untouched. Reordering is not logged.
func (c *Controller) Reorder(ctx context.Context, from, to int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.active()
	if p == nil || from == to {
		return false
	}
	n := len(p.Resources)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}

	p.Resources = Move(p.Resources, from, to)
	c.persist(ctx, p)
	return true
}

// TogglePin flips membership of res in the pinned set and persists the set.
// It reports whether res is pinned afterwards.
func (c *Controller) TogglePin(ctx context.Context, res domain.Resource) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.togglePin(ctx, res)
}

// TogglePinByID resolves id against the active project, the pinned set and the
// catalog, in that order. Unknown ids are ignored.
func (c *Controller) TogglePinByID(ctx context.Context, id string) (pinned, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.resolve(id)
	if !ok {
		return false, false
	}
	return c.togglePin(ctx, res), true
}

func (c *Controller) togglePin(ctx context.Context, res domain.Resource) bool {
	if !c.ensurePins(ctx) {
		return indexOf(c.pinned, res.ID) >= 0
	}

	pinned := false
	if i := indexOf(c.pinned, res.ID); i >= 0 {
		next := make([]domain.Resource, 0, len(c.pinned)-1)
		next = append(next, c.pinned[:i]...)
		c.pinned = append(next, c.pinned[i+1:]...)
		c.system(`Unpinned "`+html.EscapeString(res.Title)+`".`, "")
	} else {
		c.pinned = append(c.pinned, res.Clone())
		pinned = true
		c.system(`Pinned "`+html.EscapeString(res.Title)+`" to quick view.`, "")
	}

	if c.pins != nil {
		if err := c.pins.SavePins(ctx, clonePins(c.pinned)); err != nil {
			c.log.Warn("pinned set not saved", zap.Error(err))
			c.system("Pinned items could not be saved.", colorError)
		}
	}
	return pinned
}

// ensurePins retries a pinned-set load that failed during Init. Toggles are refused
// until the durable set is known.
func (c *Controller) ensurePins(ctx context.Context) bool {
	if c.pins == nil || c.pinsLoaded {
		return true
	}
	pins, err := c.pins.LoadPins(ctx)
	if err != nil {
		c.log.Warn("pinned set still unavailable", zap.Error(err))
		c.system("Pinned items are unavailable. Try again shortly.", colorError)
		return false
	}
	c.pinned = pins
	c.pinsLoaded = true
	return true
}

// ProcessCommand answers a conduit command immediately.
func (c *Controller) ProcessCommand(cmd string) Entry {
	c.mu.Lock()
	active := c.activeID
	c.mu.Unlock()
	return c.conduit.Append(respond(cmd, active), false, "")
}

// Submit echoes user input to the conduit and answers it after the command delay.
// Blank input is ignored.
func (c *Controller) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	c.conduit.Append("&gt; "+html.EscapeString(text), false, colorEcho)
	c.afterFunc(c.commandDelay, func() { c.ProcessCommand(text) })
	return true
}

// Citation formats the archive citation for a resource and logs it.
func (c *Controller) Citation(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.resolve(id)
	if !ok {
		c.system("Error copying citation.", colorError)
		return "", false
	}
	text := fmt.Sprintf(`"%s." Vox Librorum Archive. ID: %s. Accessed %d.`, res.Title, res.ID, c.now().Year())
	c.system("Citation verified/copied: "+html.EscapeString(res.ID), "")
	return text, true
}

// ShareLink builds the share text for the active project.
func (c *Controller) ShareLink() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.active()
	if p == nil {
		return "", false
	}
	text := fmt.Sprintf("Project: %s\nResources: %d\n\nVox Librorum Secure Link: vox://share/%s", p.Title, len(p.Resources), p.ID)
	c.system("Secure share link generated and copied.", "")
	return text, true
}

// Bookmark records that the current view was saved.
func (c *Controller) Bookmark() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.system("Workspace state saved to local archives.", "")
}

// ToggleFocus flips focus mode and reports the new value.
func (c *Controller) ToggleFocus() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.focus = !c.focus
	if c.focus {
		c.system("Focus Mode Engaged.", "")
	} else {
		c.system("Focus Mode Disengaged.", "")
	}
	return c.focus
}

// ActiveID is the active project id, empty when none.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Resources returns a copy of the active project's resources in display order.
func (c *Controller) Resources() []domain.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.active()
	if p == nil || c.signInRequired {
		return nil
	}
	return domain.Project{Resources: p.Resources}.Clone().Resources
}

// Pinned returns the pinned set in pin order. It is empty while sign-in is required.
func (c *Controller) Pinned() []domain.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.signInRequired {
		return []domain.Resource{}
	}
	return clonePins(c.pinned)
}

// IsPinned reports pinned-set membership of id.
func (c *Controller) IsPinned(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.signInRequired && indexOf(c.pinned, id) >= 0
}

// Snapshot projects the session into a detached State. Unauthenticated sessions
// expose no project data.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, _ := c.conduit.Last()
	if c.signInRequired {
		return State{
			SignInRequired: true,
			Projects:       []ProjectSummary{},
			Resources:      []ResourceView{},
			Pinned:         []domain.Resource{},
			LastSeq:        last.Seq,
		}
	}

	st := State{
		Projects:    make([]ProjectSummary, 0, len(c.projects)),
		ActiveID:    c.activeID,
		Title:       emptyTitle,
		Description: emptyDescription,
		Resources:   []ResourceView{},
		Pinned:      clonePins(c.pinned),
		Focus:       c.focus,
		LastSeq:     last.Seq,
	}
	for _, p := range c.projects {
		st.Projects = append(st.Projects, ProjectSummary{
			ID:            p.ID,
			Title:         p.Title,
			ResourceCount: len(p.Resources),
			Active:        p.ID == c.activeID,
		})
	}
	if p := c.active(); p != nil {
		st.Title = p.Title
		st.Description = p.Description
		st.AIContext = p.AIContext
		for _, r := range p.Resources {
			st.Resources = append(st.Resources, ResourceView{Resource: r.Clone(), Pinned: indexOf(c.pinned, r.ID) >= 0})
		}
	}
	return st
}

func (c *Controller) find(id string) *domain.Project {
	for i := range c.projects {
		if c.projects[i].ID == id {
			return &c.projects[i]
		}
	}
	return nil
}

func (c *Controller) active() *domain.Project {
	if c.activeID == "" {
		return nil
	}
	return c.find(c.activeID)
}

func (c *Controller) resolve(id string) (domain.Resource, bool) {
	if p := c.active(); p != nil {
		if i := indexOf(p.Resources, id); i >= 0 {
			return p.Resources[i].Clone(), true
		}
	}
	if i := indexOf(c.pinned, id); i >= 0 {
		return c.pinned[i].Clone(), true
	}
	if c.catalog != nil {
		return c.catalog.Get(id)
	}
	return domain.Resource{}, false
}

// persist writes the project back. Failures keep the in-memory change and are logged.
func (c *Controller) persist(ctx context.Context, p *domain.Project) {
	if err := c.store.SaveProject(ctx, p.Clone()); err != nil {
		c.syncFailed(p.ID, err)
	}
}

func (c *Controller) syncFailed(projectID string, err error) {
	if errors.Is(err, ErrUnauthenticated) {
		c.signInRequired = true
	}
	c.log.Warn("project not persisted", zap.String("project_id", projectID), zap.Error(err))
	c.system("Archive sync failed: "+html.EscapeString(err.Error()), colorError)
}

func (c *Controller) system(msg, color string) Entry {
	return c.conduit.Append("<strong>System:</strong> "+msg, false, color)
}

func indexOf(list []domain.Resource, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePins(pins []domain.Resource) []domain.Resource {
	out := make([]domain.Resource, len(pins))
	for i, r := range pins {
		out[i] = r.Clone()
	}
	return out
}

package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

// manualScheduler queues delayed callbacks until Flush.
type manualScheduler struct {
	mu     sync.Mutex
	queue  []func()
	delays []time.Duration
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, f)
	m.delays = append(m.delays, d)
}

func (m *manualScheduler) Flush() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		f := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		f()
	}
}

type catalogStub map[string]domain.Resource

func (c catalogStub) Get(id string) (domain.Resource, bool) {
	r, ok := c[id]
	return r, ok
}

func saltLine() domain.Project {
	return domain.Project{
		ID:          "salt-line",
		Title:       "The Salt Line",
		Description: "Purple fog along the northern coastlines.",
		AIContext:   "System ready. Anomaly detected in coastal elevation metrics.",
		Resources: []domain.Resource{
			{ID: "res-001", Type: "oral-history", Title: "The Lighthouse Keeper's Confession", Tags: []string{"Primary Source"}},
			{ID: "res-002", Type: "map", Title: "Topography of the Sunken City", Tags: []string{"Cartography"}},
		},
	}
}

func vostok() domain.Project {
	return domain.Project{
		ID:        "vostok",
		Title:     "Vostok Signal",
		Resources: []domain.Resource{{ID: "res-006", Type: "data", Title: "Signal Log: Nov 12"}},
	}
}

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, store *MemoryStore) (*Controller, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	c := NewController(store, store, Options{
		AfterFunc: sched.AfterFunc,
		Now:       func() time.Time { return fixedNow },
		Catalog: catalogStub{
			"OBJ-11": {ID: "OBJ-11", Type: "Oddities", Title: "Iron Key (No Ward)", Desc: "A heavy iron key."},
		},
	})
	return c, sched
}

func started(t *testing.T, projects ...domain.Project) (*Controller, *MemoryStore, *manualScheduler) {
	t.Helper()
	store := NewMemoryStore(projects)
	c, sched := newTestController(t, store)
	require.NoError(t, c.Init(context.Background()))
	sched.Flush()
	return c, store, sched
}

func ids(rs []domain.Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func texts(c *Controller) []string {
	entries := c.Conduit().Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text()
	}
	return out
}

func lastText(t *testing.T, c *Controller) string {
	t.Helper()
	e, ok := c.Conduit().Last()
	require.True(t, ok)
	return e.Text()
}

func TestInit_ActivatesFirstProject(t *testing.T) {
	store := NewMemoryStore([]domain.Project{saltLine(), vostok()})
	c, sched := newTestController(t, store)

	require.NoError(t, c.Init(context.Background()))
	assert.Equal(t, "salt-line", c.ActiveID())

	entries := c.Conduit().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, `System: Loaded context: "The Salt Line"`, entries[0].Text())
	assert.True(t, entries[0].Emphasized)

	require.Len(t, sched.delays, 1)
	assert.Equal(t, 600*time.Millisecond, sched.delays[0])
	sched.Flush()
	assert.Equal(t, "AI: System ready. Anomaly detected in coastal elevation metrics.", lastText(t, c))
	assert.Equal(t, 2, c.Conduit().Len())
}

func TestInit_NoProjects(t *testing.T) {
	c, _, _ := started(t)

	st := c.Snapshot()
	assert.Empty(t, st.ActiveID)
	assert.Equal(t, "No Active Projects", st.Title)
	assert.Equal(t, "Create a project to begin.", st.Description)
	assert.Equal(t, 0, c.Conduit().Len())
}

func TestInit_FetchFailureDegrades(t *testing.T) {
	store := NewMemoryStore([]domain.Project{saltLine()})
	store.ListErr = errors.New("Failed to load projects")
	c, _ := newTestController(t, store)

	require.NoError(t, c.Init(context.Background()))
	assert.Empty(t, c.ActiveID())
	assert.Empty(t, c.Snapshot().Projects)

	e, ok := c.Conduit().Last()
	require.True(t, ok)
	assert.Equal(t, "System: Connection lost. Failed to load projects", e.Text())
	assert.Equal(t, "red", e.Color)
}

func TestInit_UnauthenticatedWithholdsData(t *testing.T) {
	store := NewMemoryStore([]domain.Project{saltLine()})
	store.ListErr = ErrUnauthenticated
	c, _ := newTestController(t, store)

	err := c.Init(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.True(t, c.SignInRequired())

	st := c.Snapshot()
	assert.True(t, st.SignInRequired)
	assert.Empty(t, st.Projects)
	assert.Empty(t, st.Resources)
	assert.Empty(t, st.Title)

	_, created := c.CreateProject(context.Background(), "Anything")
	assert.False(t, created)
}

func TestLoadProject(t *testing.T) {
	c, _, sched := started(t, saltLine(), vostok())
	before := c.Conduit().Len()

	assert.False(t, c.LoadProject("missing"))
	assert.Equal(t, "salt-line", c.ActiveID())
	assert.Equal(t, before, c.Conduit().Len())

	assert.True(t, c.LoadProject("vostok"))
	assert.Equal(t, "vostok", c.ActiveID())
	assert.Equal(t, before+1, c.Conduit().Len(), "assistant entry is delayed")
	sched.Flush()
	assert.Equal(t, "AI: Awaiting input.", lastText(t, c))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"The Salt Line":       "the-salt-line",
		"Vostok Signal":       "vostok-signal",
		"St. Jude's Ward #3":  "st-jude-s-ward-3",
		"Case 1994":           "case-1994",
		"  spaced   out  ":    "-spaced-out-",
		"Ärger im Nebel":      "-rger-im-nebel",
		"already-a-slug":      "already-a-slug",
		"multi---dash!!!tail": "multi-dash-tail",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	c, store, sched := started(t, saltLine())

	_, ok := c.CreateProject(ctx, "   ")
	assert.False(t, ok)
	assert.Len(t, c.Snapshot().Projects, 1)

	before := c.Conduit().Len()
	id, ok := c.CreateProject(ctx, "  Deep Current! ")
	require.True(t, ok)
	assert.Equal(t, "deep-current-", id)
	assert.Equal(t, id, c.ActiveID())

	got := texts(c)[before:]
	assert.Equal(t, []string{
		`System: Loaded context: "Deep Current!"`,
		`System: New project "Deep Current!" initialized.`,
	}, got)
	sched.Flush()
	assert.Equal(t, "AI: Initializing new sector scan...", lastText(t, c))

	stored, ok := store.Project(id)
	require.True(t, ok)
	assert.Equal(t, "New investigation awaiting parameters.", stored.Description)
	assert.Empty(t, stored.Resources)

	again, ok := c.CreateProject(ctx, "Deep Current!")
	require.True(t, ok)
	assert.Equal(t, "deep-current--2", again)

	st := c.Snapshot()
	require.Len(t, st.Projects, 3)
	assert.Equal(t, again, st.Projects[2].ID)
	assert.True(t, st.Projects[2].Active)
}

func TestAddResourceToProject_Idempotent(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine())
	item := domain.Resource{ID: "OBJ-11", Type: "Oddities", Title: "Iron Key (No Ward)", Desc: "A heavy iron key."}

	assert.True(t, c.AddResourceToProject(ctx, item))
	once := ids(c.Resources())
	assert.Equal(t, `System: Imported "Iron Key (No Ward)" from Archive.`, lastText(t, c))

	assert.False(t, c.AddResourceToProject(ctx, item))
	assert.Equal(t, once, ids(c.Resources()))
	assert.Equal(t, `System: Item "Iron Key (No Ward)" is already in workspace.`, lastText(t, c))

	added := c.Resources()[2]
	assert.Equal(t, "A heavy iron key.", added.Summary)
	assert.Equal(t, []string{"Imported"}, added.Tags)

	stored, _ := store.Project("salt-line")
	assert.Equal(t, once, ids(stored.Resources))
}

func TestAddResourceToProject_Defaults(t *testing.T) {
	ctx := context.Background()
	c, _, _ := started(t, saltLine())

	c.AddResourceToProject(ctx, domain.Resource{ID: "x-1", Title: "Bare"})
	c.AddResourceToProject(ctx, domain.Resource{ID: "x-2", Title: "Tagged", Summary: "Short", Desc: "Long", Tags: []string{"Kept"}})

	res := c.Resources()
	assert.Equal(t, "Imported from Archive. Awaiting full analysis.", res[2].Summary)
	assert.Equal(t, "Short", res[3].Summary)
	assert.Equal(t, []string{"Kept"}, res[3].Tags)
}

func TestAddResourceToProject_NoActiveProject(t *testing.T) {
	c, _, _ := started(t)
	assert.False(t, c.AddResourceToProject(context.Background(), domain.Resource{ID: "a", Title: "A"}))
	assert.Equal(t, 0, c.Conduit().Len())
}

func TestImportByID(t *testing.T) {
	ctx := context.Background()
	c, _, _ := started(t, saltLine())

	assert.True(t, c.ImportByID(ctx, "OBJ-11"))
	assert.Equal(t, []string{"res-001", "res-002", "OBJ-11"}, ids(c.Resources()))

	assert.False(t, c.ImportByID(ctx, "NOPE"))
	e, _ := c.Conduit().Last()
	assert.Equal(t, "red", e.Color)
}

func TestRemoveResource(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine())
	before := c.Conduit().Len()

	assert.False(t, c.RemoveResource(ctx, "absent"))
	assert.Equal(t, []string{"res-001", "res-002"}, ids(c.Resources()))
	assert.Equal(t, before, c.Conduit().Len())

	assert.True(t, c.RemoveResource(ctx, "res-001"))
	assert.Equal(t, []string{"res-002"}, ids(c.Resources()))
	assert.Equal(t, "System: Resource removed from project.", lastText(t, c))
	assert.Equal(t, 1, c.Snapshot().Projects[0].ResourceCount)

	stored, _ := store.Project("salt-line")
	assert.Equal(t, []string{"res-002"}, ids(stored.Resources))
}

func TestRemoveThenAddRestores(t *testing.T) {
	ctx := context.Background()
	c, _, _ := started(t, saltLine())
	item := c.Resources()[0]

	c.RemoveResource(ctx, item.ID)
	assert.NotContains(t, ids(c.Resources()), item.ID)
	c.AddResourceToProject(ctx, item)
	assert.Contains(t, ids(c.Resources()), item.ID)
}

func TestMove(t *testing.T) {
	in := []string{"a", "b", "c", "d"}

	assert.Equal(t, []string{"b", "c", "a", "d"}, Move(in, 0, 2))
	assert.Equal(t, []string{"d", "a", "b", "c"}, Move(in, 3, 0))
	assert.Equal(t, []string{"a", "c", "d", "b"}, Move(in, 1, 3))
	assert.Equal(t, []string{"a", "b", "c", "d"}, in, "input untouched")
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	p := saltLine()
	p.Resources = append(p.Resources,
		domain.Resource{ID: "res-003", Title: "Three"},
		domain.Resource{ID: "res-004", Title: "Four"},
	)
	c, store, _ := started(t, p)
	before := c.Conduit().Len()

	assert.False(t, c.Reorder(ctx, 1, 1))
	assert.False(t, c.Reorder(ctx, -1, 2))
	assert.False(t, c.Reorder(ctx, 0, 4))
	assert.Equal(t, []string{"res-001", "res-002", "res-003", "res-004"}, ids(c.Resources()))

	assert.True(t, c.Reorder(ctx, 0, 2))
	got := ids(c.Resources())
	assert.Equal(t, []string{"res-002", "res-003", "res-001", "res-004"}, got)
	assert.ElementsMatch(t, []string{"res-001", "res-002", "res-003", "res-004"}, got)
	assert.Equal(t, before, c.Conduit().Len(), "reorder is not logged")

	stored, _ := store.Project("salt-line")
	assert.Equal(t, got, ids(stored.Resources))
}

func TestTogglePin_Involution(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine())
	res := c.Resources()[1]

	assert.True(t, c.TogglePin(ctx, res))
	assert.True(t, c.IsPinned(res.ID))
	assert.Equal(t, `System: Pinned "Topography of the Sunken City" to quick view.`, lastText(t, c))
	saved, _ := store.LoadPins(ctx)
	assert.Equal(t, []string{"res-002"}, ids(saved))

	assert.False(t, c.TogglePin(ctx, res))
	assert.False(t, c.IsPinned(res.ID))
	assert.Equal(t, `System: Unpinned "Topography of the Sunken City".`, lastText(t, c))
	saved, _ = store.LoadPins(ctx)
	assert.Empty(t, saved)
}

func TestPinsSurviveProjectSwitchAndRestart(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine(), vostok())

	pinned, found := c.TogglePinByID(ctx, "res-001")
	require.True(t, found)
	assert.True(t, pinned)

	c.LoadProject("vostok")
	assert.Equal(t, []string{"res-001"}, ids(c.Pinned()))

	_, found = c.TogglePinByID(ctx, "nowhere")
	assert.False(t, found)

	restarted, sched := newTestController(t, store)
	require.NoError(t, restarted.Init(ctx))
	sched.Flush()
	assert.Equal(t, []string{"res-001"}, ids(restarted.Pinned()))
	assert.True(t, restarted.Snapshot().Resources[0].Pinned)
}

func TestDeskScenario(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine())
	original := saltLine().Resources[0]

	require.True(t, c.Reorder(ctx, 0, 1))
	assert.Equal(t, []string{"res-002", "res-001"}, ids(c.Resources()))

	c.TogglePin(ctx, c.Resources()[0])
	assert.Equal(t, []string{"res-002"}, ids(c.Pinned()))

	c.RemoveResource(ctx, "res-001")
	assert.Equal(t, []string{"res-002"}, ids(c.Resources()))

	c.AddResourceToProject(ctx, original)
	assert.Equal(t, []string{"res-002", "res-001"}, ids(c.Resources()))

	stored, _ := store.Project("salt-line")
	assert.Equal(t, []string{"res-002", "res-001"}, ids(stored.Resources))
}

func TestSaveFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine())
	store.SaveErr = errors.New("archive offline")

	assert.True(t, c.Reorder(ctx, 0, 1))
	assert.Equal(t, []string{"res-002", "res-001"}, ids(c.Resources()))

	e, _ := c.Conduit().Last()
	assert.Equal(t, "System: Archive sync failed: archive offline", e.Text())
	assert.Equal(t, "red", e.Color)

	store.SaveErr = ErrUnauthenticated
	c.RemoveResource(ctx, "res-001")
	assert.True(t, c.SignInRequired())
	assert.Empty(t, c.Snapshot().Resources)
}

func TestReply(t *testing.T) {
	cases := []struct {
		cmd, active, want string
		ok                bool
	}{
		{"ANALYZE the map", "salt-line", "Cross-referencing coastal data. Discrepancy found in sector 4.", true},
		{"scan", "vostok", "Scanning current project resources... No structural anomalies detected in text data.", true},
		{"hello, scan please", "", "Scanning current project resources... No structural anomalies detected in text data.", true},
		{"Hi there", "", "Greetings, Archivist Nova. I am ready to assist.", true},
		{"this helps", "", "Greetings, Archivist Nova. I am ready to assist.", true},
		{"help", "", "Available commands: ANALYZE, SCAN, IMPORT, CONNECT.", true},
		{"connect", "", "", false},
	}
	for _, tc := range cases {
		got, ok := Reply(tc.cmd, tc.active)
		assert.Equal(t, tc.ok, ok, tc.cmd)
		assert.Equal(t, tc.want, got, tc.cmd)
	}
}

func TestSubmit(t *testing.T) {
	c, _, sched := started(t, saltLine())

	assert.False(t, c.Submit("   "))

	before := c.Conduit().Len()
	require.True(t, c.Submit("analyze"))
	echo, _ := c.Conduit().Last()
	assert.Equal(t, "> analyze", echo.Text())
	assert.Equal(t, "rgba(255,255,255,0.8)", echo.Color)
	assert.Equal(t, before+1, c.Conduit().Len())
	assert.Equal(t, 800*time.Millisecond, sched.delays[len(sched.delays)-1])

	sched.Flush()
	assert.Equal(t, "Assistant: Cross-referencing coastal data. Discrepancy found in sector 4.", lastText(t, c))

	e := c.ProcessCommand(`<b>connect</b> "now"`)
	assert.Equal(t, `Assistant: I'm analyzing "<b>connect</b> "now""...`, e.Text())
	assert.NotContains(t, e.HTML, "<b>")
}

func TestCitationAndShare(t *testing.T) {
	c, _, _ := started(t, saltLine())

	text, ok := c.Citation("res-001")
	require.True(t, ok)
	assert.Equal(t, `"The Lighthouse Keeper's Confession." Vox Librorum Archive. ID: res-001. Accessed 2026.`, text)
	assert.Equal(t, "System: Citation verified/copied: res-001", lastText(t, c))

	text, ok = c.Citation("OBJ-11")
	require.True(t, ok)
	assert.Contains(t, text, "Iron Key (No Ward)")

	_, ok = c.Citation("missing")
	assert.False(t, ok)
	assert.Equal(t, "System: Error copying citation.", lastText(t, c))

	share, ok := c.ShareLink()
	require.True(t, ok)
	assert.Equal(t, "Project: The Salt Line\nResources: 2\n\nVox Librorum Secure Link: vox://share/salt-line", share)
	assert.Equal(t, "System: Secure share link generated and copied.", lastText(t, c))

	empty, _, _ := started(t)
	_, ok = empty.ShareLink()
	assert.False(t, ok)
}

func TestFocusAndBookmark(t *testing.T) {
	c, _, _ := started(t, saltLine())

	assert.True(t, c.ToggleFocus())
	assert.Equal(t, "System: Focus Mode Engaged.", lastText(t, c))
	assert.False(t, c.ToggleFocus())
	assert.Equal(t, "System: Focus Mode Disengaged.", lastText(t, c))

	c.Bookmark()
	assert.Equal(t, "System: Workspace state saved to local archives.", lastText(t, c))
}

func TestSnapshotIsDetached(t *testing.T) {
	c, _, _ := started(t, saltLine())

	st := c.Snapshot()
	st.Resources[0].Title = "mutated"
	st.Resources[0].Tags[0] = "mutated"

	again := c.Snapshot()
	assert.Equal(t, "The Lighthouse Keeper's Confession", again.Resources[0].Title)
	assert.Equal(t, "Primary Source", again.Resources[0].Tags[0])
}

// flakyPins is a pin store whose loads fail while loadErr is set.
type flakyPins struct {
	mu      sync.Mutex
	saved   []domain.Resource
	loadErr error
	saves   int
}

func (f *flakyPins) LoadPins(context.Context) ([]domain.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return clonePins(f.saved), nil
}

func (f *flakyPins) SavePins(_ context.Context, pins []domain.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.saved = clonePins(pins)
	return nil
}

func TestTogglePin_FailedLoadKeepsDurableSet(t *testing.T) {
	ctx := context.Background()
	pins := &flakyPins{
		saved:   []domain.Resource{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		loadErr: errors.New("redis: i/o timeout"),
	}
	store := NewMemoryStore([]domain.Project{saltLine()})
	c := NewController(store, pins, Options{AfterFunc: func(time.Duration, func()) {}})
	require.NoError(t, c.Init(ctx))
	assert.Empty(t, c.Pinned())

	pinned, found := c.TogglePinByID(ctx, "res-001")
	require.True(t, found)
	assert.False(t, pinned)
	assert.Equal(t, 0, pins.saves)
	assert.Equal(t, "System: Pinned items are unavailable. Try again shortly.", lastText(t, c))

	pins.mu.Lock()
	pins.loadErr = nil
	pins.mu.Unlock()

	pinned, _ = c.TogglePinByID(ctx, "res-001")
	assert.True(t, pinned)
	assert.Equal(t, []string{"a", "b", "c", "res-001"}, ids(pins.saved))
	assert.Equal(t, []string{"a", "b", "c", "res-001"}, ids(c.Pinned()))
}

func TestInit_DegradedUntilReload(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore([]domain.Project{saltLine()})
	store.ListErr = errors.New("connection refused")
	c, sched := newTestController(t, store)

	require.NoError(t, c.Init(ctx))
	assert.True(t, c.Degraded())
	assert.Empty(t, c.Snapshot().Projects)

	store.ListErr = nil
	require.NoError(t, c.Init(ctx))
	sched.Flush()
	assert.False(t, c.Degraded())
	assert.Equal(t, "salt-line", c.ActiveID())
}

func TestSignInRequiredHidesResourcesAndPins(t *testing.T) {
	ctx := context.Background()
	c, store, _ := started(t, saltLine())
	c.TogglePinByID(ctx, "res-001")
	require.NotEmpty(t, c.Resources())

	store.SaveErr = ErrUnauthenticated
	c.Reorder(ctx, 0, 1)
	require.True(t, c.SignInRequired())

	assert.Empty(t, c.Resources())
	assert.Empty(t, c.Pinned())
	assert.False(t, c.IsPinned("res-001"))
}

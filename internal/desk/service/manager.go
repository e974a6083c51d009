package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vox-librorum/vox-desk/internal/workspace"
)

// Publisher fans conduit entries out beyond this process.
type Publisher interface {
	PublishEntry(ctx context.Context, userID string, e workspace.Entry) error
}

type session struct {
	ctrl     *workspace.Controller
	lastUsed time.Time
	// degraded sessions could not fetch projects; they reload after retryAt.
	degraded bool
	retryAt  time.Time
}

// Manager keeps one Workspace Controller per signed-in user.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	opening  singleflight.Group

	projects   ProjectService
	pins       PinRepository
	publisher  Publisher
	opts       workspace.Options
	log        *zap.Logger
	now        func() time.Time
	retryAfter time.Duration
}

// NewManager wires desk sessions. opts is applied to every controller; its Logger
// defaults to log.
func NewManager(projects ProjectService, pins PinRepository, opts workspace.Options, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Manager{
		sessions:   make(map[string]*session),
		projects:   projects,
		pins:       pins,
		opts:       opts,
		log:        log,
		now:        time.Now,
		retryAfter: 5 * time.Second,
	}
}

// SetPublisher enables conduit fan-out for controllers created afterwards.
func (m *Manager) SetPublisher(p Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publisher = p
}

// Get returns the user's controller, creating and initialising it on first use.
// Opening a desk does not block other users; concurrent first calls for one user
// share a single Init.
func (m *Manager) Get(ctx context.Context, userID string) (*workspace.Controller, error) {
	if ctrl, ok := m.cached(userID); ok {
		return ctrl, nil
	}
	v, err, _ := m.opening.Do(userID, func() (any, error) {
		return m.open(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*workspace.Controller), nil
}

// cached returns a ready session and marks it used.
func (m *Manager) cached(userID string) (*workspace.Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || m.reloadDue(s) {
		return nil, false
	}
	s.lastUsed = m.now()
	return s.ctrl, true
}

func (m *Manager) reloadDue(s *session) bool {
	return s.degraded && !m.now().Before(s.retryAt)
}

// open initialises a new controller, or reloads a degraded one, outside the lock.
func (m *Manager) open(ctx context.Context, userID string) (*workspace.Controller, error) {
	m.mu.Lock()
	s := m.sessions[userID]
	if s != nil && !m.reloadDue(s) {
		// another caller finished opening it
		s.lastUsed = m.now()
		m.mu.Unlock()
		return s.ctrl, nil
	}
	var ctrl *workspace.Controller
	if s != nil {
		ctrl = s.ctrl
	} else {
		ctrl = m.newController(userID)
	}
	m.mu.Unlock()

	if err := ctrl.Init(ctx); err != nil {
		if s != nil {
			m.remove(userID, s)
		}
		return nil, err
	}
	degraded := ctrl.Degraded()

	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		s = &session{ctrl: ctrl}
		m.sessions[userID] = s
		m.log.Info("desk session opened", zap.String("user_id", userID), zap.Int("sessions", len(m.sessions)))
	}
	s.lastUsed = m.now()
	s.degraded = degraded
	s.retryAt = m.now().Add(m.retryAfter)
	if degraded {
		m.log.Warn("desk session degraded", zap.String("user_id", userID), zap.Duration("retry_after", m.retryAfter))
	}
	return ctrl, nil
}

func (m *Manager) newController(userID string) *workspace.Controller {
	ctrl := workspace.NewController(
		ownerProjects{svc: m.projects, owner: userID},
		userPins{repo: m.pins, user: userID},
		m.opts,
	)
	if m.publisher != nil {
		pub := m.publisher
		ctrl.Conduit().OnAppend(func(e workspace.Entry) {
			pctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := pub.PublishEntry(pctx, userID, e); err != nil {
				m.log.Warn("conduit publish failed", zap.String("user_id", userID), zap.Error(err))
			}
		})
	}
	return ctrl
}

func (m *Manager) remove(userID string, s *session) {
	m.mu.Lock()
	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	s.ctrl.Conduit().Close()
}

// Touch marks the user's session as in use, keeping it from the idle sweep.
func (m *Manager) Touch(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.lastUsed = m.now()
	}
}

// Drop forgets the user's session and ends its conduit streams; the next Get
// starts fresh.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok {
		m.remove(userID, s)
	}
}

// Sweep drops sessions idle for longer than idle and returns how many were removed.
// Their conduit streams are ended so clients reconnect to a fresh desk.
func (m *Manager) Sweep(idle time.Duration) int {
	m.mu.Lock()
	cutoff := m.now().Add(-idle)
	var stale []*session
	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.ctrl.Conduit().Close()
	}
	return len(stale)
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
